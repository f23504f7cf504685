package telegram

import (
	"context"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// NewBot creates new telegram bot
func NewBot(c BotConfig) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug
	log.Debugf("authorized as @%s", bot.Self.UserName)

	return &Bot{
		Bot:    bot,
		Config: c,
	}, nil
}

// PollUpdates fetches pending updates past the given offset. Channel posts
// carry the price lists, direct messages carry the service commands.
func (b *Bot) PollUpdates(offset, limit int) ([]tgbotapi.Update, error) {
	updatesConfig := tgbotapi.NewUpdate(offset)
	updatesConfig.Limit = limit
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	updatesConfig.AllowedUpdates = []string{"channel_post", "message"}

	updates, err := b.Bot.GetUpdates(updatesConfig)
	return updates, errors.Wrap(err, "could not get updates")
}

// DownloadDocument fetches a document attachment by its file id.
func (b *Bot) DownloadDocument(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, errors.Wrapf(err, "could not resolve file %s", fileID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not build download request")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "could not download file %s", fileID)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %s downloading file %s", resp.Status, fileID)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read file %s", fileID)
	}
	return data, nil
}

// SendDocument posts a file with a caption to the given chat.
func (b *Bot) SendDocument(chat ChatRef, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chat.ChatID, tgbotapi.FileBytes{
		Name:  name,
		Bytes: data,
	})
	if chat.Username != "" {
		doc.ChannelUsername = chat.Username
	}
	doc.Caption = caption

	_, err := b.Bot.Send(doc)
	return errors.Wrapf(err, "could not send document %s", name)
}

// ParseChatRef accepts either a numeric chat id or a public @username.
func ParseChatRef(s string) (ChatRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ChatRef{}, errors.New("empty chat reference")
	}
	if strings.HasPrefix(s, "@") {
		return ChatRef{Username: s}, nil
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return ChatRef{}, errors.Wrapf(err, "chat reference %q is neither numeric nor an @username", s)
	}
	return ChatRef{ChatID: id}, nil
}
