package source

import (
	"context"
	"fmt"
	"unified-price-bot/internal/pricelist"
	"unified-price-bot/internal/types"
)

// Reader produces a new price list when its upstream has one.
// Poll returns (nil, nil) when nothing new arrived since the last poll.
type Reader interface {
	Tag() types.SourceTag
	Poll(ctx context.Context) (*pricelist.File, error)
}

// StateStore persists reader cursors across restarts: the channel reader
// keeps an update offset, the sheet reader keeps a content hash.
type StateStore interface {
	LoadCursor(source string) (offset int64, hash string, err error)
	SaveCursor(source string, offset int64, hash string) error
}

// UnavailableError marks a poll that failed against the upstream service.
// The next interval retries; nothing is lost.
type UnavailableError struct {
	Source types.SourceTag
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s source unavailable: %v", e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
