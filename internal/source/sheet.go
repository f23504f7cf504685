package source

import (
	"context"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"time"
	"unified-price-bot/internal/pricelist"
	"unified-price-bot/internal/types"
)

type sheetExporter interface {
	Export(ctx context.Context, spreadsheetID string) (*pricelist.Snapshot, error)
}

// SheetConfig wires a sheet reader to one watched spreadsheet.
type SheetConfig struct {
	SpreadsheetID string
}

// SheetReader exports a spreadsheet into one workbook whenever its content
// changes. The content hash survives restarts through the state store.
type SheetReader struct {
	client   sheetExporter
	state    StateStore
	config   SheetConfig
	lastHash string
}

func NewSheetReader(client sheetExporter, state StateStore, cfg SheetConfig) (*SheetReader, error) {
	_, hash, err := state.LoadCursor(string(types.SourceSheet))
	if err != nil {
		return nil, errors.Wrap(err, "could not load sheet cursor")
	}

	return &SheetReader{
		client:   client,
		state:    state,
		config:   cfg,
		lastHash: hash,
	}, nil
}

func (r *SheetReader) Tag() types.SourceTag {
	return types.SourceSheet
}

// Poll re-exports the spreadsheet and emits a workbook only when the content
// hash moved since the last emission.
func (r *SheetReader) Poll(ctx context.Context) (*pricelist.File, error) {
	snap, err := r.client.Export(ctx, r.config.SpreadsheetID)
	if err != nil {
		return nil, &UnavailableError{Source: types.SourceSheet, Err: err}
	}
	if len(snap.Sheets) == 0 {
		log.Warnf("spreadsheet %s has no sheets, nothing to export", r.config.SpreadsheetID)
		return nil, nil
	}

	hash := pricelist.Fingerprint(snap)
	if hash == r.lastHash {
		return nil, nil
	}

	data, err := pricelist.BuildWorkbook(snap)
	if err != nil {
		return nil, &UnavailableError{Source: types.SourceSheet, Err: err}
	}

	r.lastHash = hash
	if err := r.state.SaveCursor(string(types.SourceSheet), 0, hash); err != nil {
		log.Errorf("could not persist sheet cursor: %v", err)
	}

	name := snap.Title
	if name == "" {
		name = r.config.SpreadsheetID
	}
	return &pricelist.File{
		Name:       name + ".xlsx",
		Source:     types.SourceSheet,
		ReceivedAt: time.Now(),
		Data:       data,
	}, nil
}
