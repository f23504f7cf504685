package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
	"unified-price-bot/internal/commands"
	"unified-price-bot/internal/stats"
)

// CommandResponder answers the bot's service commands. Anything else sent
// to the bot is ignored.
func (b *Bot) CommandResponder(run *stats.Run) func(*tgbotapi.Message) {
	return func(msg *tgbotapi.Message) {
		if msg == nil || msg.Chat == nil || !msg.IsCommand() {
			return
		}
		log.Debugf("received command: %s", msg.Command())

		var text string
		switch msg.Command() {
		case "start":
			text = commands.CommandStart()
		case "stats":
			text = commands.CommandStats(run)
		default:
			return
		}

		reply := tgbotapi.NewMessage(msg.Chat.ID, text)
		reply.ReplyToMessageID = msg.MessageID
		reply.DisableWebPagePreview = true
		reply.ParseMode = "MarkdownV2"
		if _, err := b.Bot.Send(reply); err != nil {
			log.Errorf("could not answer /%s: %v", msg.Command(), err)
		}
	}
}
