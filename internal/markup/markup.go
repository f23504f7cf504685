package markup

import (
	"bytes"
	"fmt"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"math"
	"strconv"
	"strings"
	"unified-price-bot/internal/pricelist"
	"unified-price-bot/internal/types"
)

// OutFile is one finished workbook ready for publishing.
type OutFile struct {
	Name          string
	Data          []byte
	PricesUpdated int
	Notes         []types.CellNote
}

// Output is the ordered result of applying a markup rule to one price list.
type Output struct {
	Files []OutFile
}

// MalformedInputError marks a price list the engine could not make sense of.
type MalformedInputError struct {
	Source types.SourceTag
	Name   string
	Err    error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed price list %q from %s source: %v", e.Name, e.Source, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Engine applies markup rules to price lists.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Apply adds the rule's flat addend to every numeric price cell. With
// SplitSheets off it returns one workbook with every sheet adjusted in place;
// with SplitSheets on it returns one workbook per original worksheet, each
// made visible and named after its sheet.
func (e *Engine) Apply(f *pricelist.File, rule types.MarkupRule) (*Output, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(f.Data))
	if err != nil {
		return nil, &MalformedInputError{Source: f.Source, Name: f.Name, Err: errors.Wrap(err, "could not open workbook")}
	}
	defer wb.Close()

	sheetList := wb.GetSheetList()
	if len(sheetList) == 0 {
		return nil, &MalformedInputError{Source: f.Source, Name: f.Name, Err: errors.New("workbook has no sheets")}
	}

	if rule.SplitSheets {
		return e.applySplit(f, rule, sheetList)
	}

	var (
		updated   int
		notes     []types.CellNote
		sawColumn bool
	)
	for _, sheet := range sheetList {
		res, err := markupSheet(wb, sheet, rule)
		if err != nil {
			return nil, &MalformedInputError{Source: f.Source, Name: f.Name, Err: err}
		}
		updated += res.updated
		notes = append(notes, res.notes...)
		sawColumn = sawColumn || res.sawColumn
	}
	if !sawColumn {
		return nil, &MalformedInputError{
			Source: f.Source,
			Name:   f.Name,
			Err:    errors.Errorf("no data row reaches price column %d", rule.PriceColumn),
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrapf(err, "could not serialize %q", f.Name)
	}

	log.Debugf("markup applied to %s: %d prices updated, %d cells skipped", f.Name, updated, len(notes))
	return &Output{Files: []OutFile{{
		Name:          pricelist.UpdateName(f.Name),
		Data:          buf.Bytes(),
		PricesUpdated: updated,
		Notes:         notes,
	}}}, nil
}

// applySplit reopens the original bytes once per worksheet, drops the other
// worksheets from the copy and adjusts the one that remains.
func (e *Engine) applySplit(f *pricelist.File, rule types.MarkupRule, sheetList []string) (*Output, error) {
	var (
		files     []OutFile
		sawColumn bool
	)

	for _, sheet := range sheetList {
		sub, err := excelize.OpenReader(bytes.NewReader(f.Data))
		if err != nil {
			return nil, &MalformedInputError{Source: f.Source, Name: f.Name, Err: errors.Wrap(err, "could not reopen workbook")}
		}

		out, err := buildSheetFile(sub, sheet, sheetList, rule)
		sub.Close()
		if err != nil {
			return nil, &MalformedInputError{Source: f.Source, Name: f.Name, Err: err}
		}

		sawColumn = sawColumn || out.sawColumn
		files = append(files, out.file)
	}

	if !sawColumn {
		return nil, &MalformedInputError{
			Source: f.Source,
			Name:   f.Name,
			Err:    errors.Errorf("no data row reaches price column %d", rule.PriceColumn),
		}
	}

	log.Debugf("markup split %s into %d file(s)", f.Name, len(files))
	return &Output{Files: files}, nil
}

type sheetFile struct {
	file      OutFile
	sawColumn bool
}

func buildSheetFile(sub *excelize.File, sheet string, sheetList []string, rule types.MarkupRule) (sheetFile, error) {
	var out sheetFile

	for _, other := range sheetList {
		if other == sheet {
			continue
		}
		if err := sub.DeleteSheet(other); err != nil {
			return out, errors.Wrapf(err, "could not drop sheet %q", other)
		}
	}
	if err := sub.SetSheetVisible(sheet, true); err != nil {
		return out, errors.Wrapf(err, "could not unhide sheet %q", sheet)
	}
	idx, err := sub.GetSheetIndex(sheet)
	if err != nil {
		return out, errors.Wrapf(err, "could not locate sheet %q", sheet)
	}
	sub.SetActiveSheet(idx)

	res, err := markupSheet(sub, sheet, rule)
	if err != nil {
		return out, err
	}

	buf, err := sub.WriteToBuffer()
	if err != nil {
		return out, errors.Wrapf(err, "could not serialize sheet %q", sheet)
	}

	out.file = OutFile{
		Name:          sheet + ".xlsx",
		Data:          buf.Bytes(),
		PricesUpdated: res.updated,
		Notes:         res.notes,
	}
	out.sawColumn = res.sawColumn
	return out, nil
}

type sheetResult struct {
	updated   int
	sawColumn bool
	notes     []types.CellNote
}

// markupSheet walks one worksheet's price column below the header block.
// Integer prices stay integers, decimal prices stay decimals, anything
// non-numeric is left alone and noted.
func markupSheet(wb *excelize.File, sheet string, rule types.MarkupRule) (sheetResult, error) {
	var res sheetResult

	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return res, errors.Wrapf(err, "could not read sheet %q", sheet)
	}

	addend := rule.FlatAddend
	integralAddend := addend == math.Trunc(addend)

	for i := rule.HeaderRow; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1

		if len(row) < rule.PriceColumn {
			if rowHasContent(row) {
				res.notes = append(res.notes, types.CellNote{Sheet: sheet, Row: rowNum})
				log.Warnf("⚠️ sheet %q row %d has no price cell, left as is", sheet, rowNum)
			}
			continue
		}
		res.sawColumn = true

		raw := strings.TrimSpace(row[rule.PriceColumn-1])
		if raw == "" {
			if rowHasContent(row) {
				res.notes = append(res.notes, types.CellNote{Sheet: sheet, Row: rowNum})
				log.Warnf("⚠️ sheet %q row %d has an empty price cell, left as is", sheet, rowNum)
			}
			continue
		}

		cell, err := excelize.CoordinatesToCellName(rule.PriceColumn, rowNum)
		if err != nil {
			return res, errors.Wrapf(err, "bad coordinates in sheet %q", sheet)
		}

		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			if integralAddend {
				err = wb.SetCellInt(sheet, cell, int(n+int64(addend)))
			} else {
				err = wb.SetCellFloat(sheet, cell, float64(n)+addend, -1, 64)
			}
			if err != nil {
				return res, errors.Wrapf(err, "could not update cell %s of sheet %q", cell, sheet)
			}
			res.updated++
			continue
		}

		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			if err := wb.SetCellFloat(sheet, cell, v+addend, -1, 64); err != nil {
				return res, errors.Wrapf(err, "could not update cell %s of sheet %q", cell, sheet)
			}
			res.updated++
			continue
		}

		res.notes = append(res.notes, types.CellNote{Sheet: sheet, Row: rowNum, Value: raw})
		log.Warnf("⚠️ sheet %q row %d: price cell %q is not numeric, left as is", sheet, rowNum, raw)
	}

	return res, nil
}

func rowHasContent(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}
