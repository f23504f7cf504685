package pricelist

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"path/filepath"
	"strings"
	"time"
	"unified-price-bot/internal/types"
)

// File is one detected price list, kept as raw workbook bytes plus the
// metadata the rest of the pipeline needs. Immutable once read.
type File struct {
	Name       string
	Source     types.SourceTag
	ReceivedAt time.Time
	Data       []byte
}

// Sheet is one worksheet worth of cell values.
type Sheet struct {
	Title string
	Rows  [][]interface{}
}

// Snapshot is a full copy of a spreadsheet's content at poll time.
type Snapshot struct {
	Title  string
	Sheets []Sheet
}

var spreadsheetExtensions = []string{".xlsx", ".xls"}

// IsSpreadsheet reports whether a filename looks like a price-list workbook.
func IsSpreadsheet(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range spreadsheetExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// UpdateName derives the published filename for a channel price list,
// e.g. "prices.xlsx" becomes "prices_Update.xlsx".
func UpdateName(original string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(original, ext)
	return fmt.Sprintf("%s_Update%s", base, ext)
}

// BuildWorkbook renders a snapshot into XLSX bytes. Cell values keep their
// exported types, so numbers land as numeric cells.
func BuildWorkbook(snap *Snapshot) ([]byte, error) {
	if len(snap.Sheets) == 0 {
		return nil, errors.New("snapshot has no sheets")
	}

	wb := excelize.NewFile()
	defer wb.Close()

	for i, sheet := range snap.Sheets {
		if i == 0 {
			if err := wb.SetSheetName(wb.GetSheetName(0), sheet.Title); err != nil {
				return nil, errors.Wrapf(err, "could not name sheet %q", sheet.Title)
			}
		} else {
			if _, err := wb.NewSheet(sheet.Title); err != nil {
				return nil, errors.Wrapf(err, "could not add sheet %q", sheet.Title)
			}
		}

		for r, row := range sheet.Rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, errors.Wrapf(err, "bad coordinates in sheet %q", sheet.Title)
			}
			if err := wb.SetSheetRow(sheet.Title, cell, &row); err != nil {
				return nil, errors.Wrapf(err, "could not write row %d of sheet %q", r+1, sheet.Title)
			}
		}
	}
	wb.SetActiveSheet(0)

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "could not serialize workbook")
	}
	return buf.Bytes(), nil
}

// Fingerprint hashes a snapshot's titles and cell values so unchanged
// spreadsheet content maps to the same string between polls.
func Fingerprint(snap *Snapshot) string {
	h := sha256.New()
	for _, sheet := range snap.Sheets {
		h.Write([]byte(sheet.Title))
		h.Write([]byte{0x00})
		for _, row := range sheet.Rows {
			for _, cell := range row {
				fmt.Fprintf(h, "%v", cell)
				h.Write([]byte{0x1f})
			}
			h.Write([]byte{0x1e})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DataHash hashes raw file bytes, used to recognize a re-sent identical file.
func DataHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
