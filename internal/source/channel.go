package source

import (
	"context"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"time"
	"unified-price-bot/internal/pricelist"
	"unified-price-bot/internal/types"
)

// updateBatchLimit is the Bot API maximum for one getUpdates call.
const updateBatchLimit = 100

type updatesClient interface {
	PollUpdates(offset, limit int) ([]tgbotapi.Update, error)
	DownloadDocument(ctx context.Context, fileID string) ([]byte, error)
}

// ChannelConfig wires a channel reader to one watched channel. Commands, if
// set, receives the direct messages that ride the same update stream.
type ChannelConfig struct {
	ChannelID      int64
	SkipDuplicates bool
	Commands       func(*tgbotapi.Message)
}

// ChannelReader drains price-list documents posted to a Telegram channel,
// one file per poll, oldest first. The update offset survives restarts
// through the state store.
type ChannelReader struct {
	client   updatesClient
	state    StateStore
	config   ChannelConfig
	offset   int
	lastHash string
}

func NewChannelReader(client updatesClient, state StateStore, cfg ChannelConfig) (*ChannelReader, error) {
	offset, hash, err := state.LoadCursor(string(types.SourceChannel))
	if err != nil {
		return nil, errors.Wrap(err, "could not load channel cursor")
	}

	r := &ChannelReader{
		client:   client,
		state:    state,
		config:   cfg,
		offset:   int(offset),
		lastHash: hash,
	}
	if r.offset > 0 {
		log.Debugf("channel reader resumes from update %d", r.offset)
	}
	return r, nil
}

func (r *ChannelReader) Tag() types.SourceTag {
	return types.SourceChannel
}

// Poll fetches pending updates past the cursor and emits the oldest
// spreadsheet document among them. Updates before the emitted document are
// consumed; updates after it stay queued for the next poll, so a burst of
// posts drains in arrival order.
func (r *ChannelReader) Poll(ctx context.Context) (*pricelist.File, error) {
	updates, err := r.client.PollUpdates(r.offset, updateBatchLimit)
	if err != nil {
		return nil, &UnavailableError{Source: types.SourceChannel, Err: err}
	}

	for _, u := range updates {
		doc := r.matchDocument(u)
		if doc == nil {
			if u.Message != nil && r.config.Commands != nil {
				r.config.Commands(u.Message)
			}
			r.advance(u.UpdateID+1, r.lastHash)
			continue
		}

		data, err := r.client.DownloadDocument(ctx, doc.FileID)
		if err != nil {
			// cursor stays put so the next poll retries this document
			return nil, &UnavailableError{Source: types.SourceChannel, Err: err}
		}

		hash := r.lastHash
		if r.config.SkipDuplicates {
			hash = pricelist.DataHash(data)
		}
		duplicate := r.config.SkipDuplicates && hash == r.lastHash && r.lastHash != ""
		r.advance(u.UpdateID+1, hash)

		if duplicate {
			log.Infof("skipping re-sent duplicate %s", doc.FileName)
			continue
		}

		return &pricelist.File{
			Name:       doc.FileName,
			Source:     types.SourceChannel,
			ReceivedAt: time.Now(),
			Data:       data,
		}, nil
	}

	return nil, nil
}

type channelDocument struct {
	FileID   string
	FileName string
}

func (r *ChannelReader) matchDocument(u tgbotapi.Update) *channelDocument {
	post := u.ChannelPost
	if post == nil || post.Chat == nil || post.Chat.ID != r.config.ChannelID {
		return nil
	}
	if post.Document == nil || !pricelist.IsSpreadsheet(post.Document.FileName) {
		return nil
	}
	return &channelDocument{
		FileID:   post.Document.FileID,
		FileName: post.Document.FileName,
	}
}

func (r *ChannelReader) advance(offset int, hash string) {
	r.offset = offset
	r.lastHash = hash
	if err := r.state.SaveCursor(string(types.SourceChannel), int64(offset), hash); err != nil {
		log.Errorf("could not persist channel cursor: %v", err)
	}
}
