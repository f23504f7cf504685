package source

import (
	"context"
	"errors"
	"testing"
	"unified-price-bot/internal/pricelist"
	"unified-price-bot/internal/types"
)

type fakeExporter struct {
	snap      *pricelist.Snapshot
	exportErr error
	exports   int
}

func (f *fakeExporter) Export(_ context.Context, spreadsheetID string) (*pricelist.Snapshot, error) {
	f.exports++
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.snap, nil
}

func supplierSnapshot() *pricelist.Snapshot {
	return &pricelist.Snapshot{
		Title: "Supplier Prices",
		Sheets: []pricelist.Sheet{
			{Title: "Jan", Rows: [][]interface{}{{"Item", "Price"}, {"Widget", float64(100)}}},
		},
	}
}

func TestSheetReader_Poll_EmitsOnChange(t *testing.T) {
	t.Parallel()

	exporter := &fakeExporter{snap: supplierSnapshot()}
	store := newMemoryStore()

	r, err := NewSheetReader(exporter, store, SheetConfig{SpreadsheetID: "sheet-1"})
	if err != nil {
		t.Fatalf("NewSheetReader() err = %v", err)
	}

	first, err := r.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() err = %v", err)
	}
	if first == nil {
		t.Fatal("Poll() = nil, want the first export")
	}
	if first.Name != "Supplier Prices.xlsx" {
		t.Fatalf("Poll() name = %q, want %q", first.Name, "Supplier Prices.xlsx")
	}
	if first.Source != types.SourceSheet {
		t.Fatalf("Poll() source = %q, want %q", first.Source, types.SourceSheet)
	}
	if len(first.Data) == 0 {
		t.Fatal("Poll() produced an empty workbook")
	}

	unchanged, err := r.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() err = %v", err)
	}
	if unchanged != nil {
		t.Fatalf("Poll() = %+v, want nil while the content is unchanged", unchanged)
	}

	exporter.snap = supplierSnapshot()
	exporter.snap.Sheets[0].Rows[1][1] = float64(110)

	changed, err := r.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() err = %v", err)
	}
	if changed == nil {
		t.Fatal("Poll() = nil, want a file after the content changed")
	}
}

func TestSheetReader_Poll_PersistsHashAcrossRestarts(t *testing.T) {
	t.Parallel()

	exporter := &fakeExporter{snap: supplierSnapshot()}
	store := newMemoryStore()

	r, err := NewSheetReader(exporter, store, SheetConfig{SpreadsheetID: "sheet-1"})
	if err != nil {
		t.Fatalf("NewSheetReader() err = %v", err)
	}
	if file, err := r.Poll(context.Background()); err != nil || file == nil {
		t.Fatalf("Poll() = %+v, %v, want the first export", file, err)
	}

	restarted, err := NewSheetReader(exporter, store, SheetConfig{SpreadsheetID: "sheet-1"})
	if err != nil {
		t.Fatalf("NewSheetReader() err = %v", err)
	}
	file, err := restarted.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() err = %v", err)
	}
	if file != nil {
		t.Fatalf("Poll() = %+v, want nil for unchanged content after a restart", file)
	}
}

func TestSheetReader_Poll_SourceUnavailable(t *testing.T) {
	t.Parallel()

	exporter := &fakeExporter{exportErr: errors.New("quota exceeded")}
	r, err := NewSheetReader(exporter, newMemoryStore(), SheetConfig{SpreadsheetID: "sheet-1"})
	if err != nil {
		t.Fatalf("NewSheetReader() err = %v", err)
	}

	_, err = r.Poll(context.Background())
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Poll() expected UnavailableError, got %v", err)
	}
	if unavailable.Source != types.SourceSheet {
		t.Fatalf("error source = %q, want %q", unavailable.Source, types.SourceSheet)
	}
}

func TestSheetReader_Poll_IgnoresEmptySpreadsheet(t *testing.T) {
	t.Parallel()

	exporter := &fakeExporter{snap: &pricelist.Snapshot{Title: "Empty"}}
	r, err := NewSheetReader(exporter, newMemoryStore(), SheetConfig{SpreadsheetID: "sheet-1"})
	if err != nil {
		t.Fatalf("NewSheetReader() err = %v", err)
	}

	file, err := r.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() err = %v", err)
	}
	if file != nil {
		t.Fatalf("Poll() = %+v, want nil for an empty spreadsheet", file)
	}
}
