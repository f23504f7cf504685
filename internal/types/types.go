package types

// SourceTag identifies which upstream a price list came from.
type SourceTag string

const (
	SourceChannel SourceTag = "channel"
	SourceSheet   SourceTag = "sheet"
)

// MarkupRule describes how prices from one source are adjusted.
// Loaded once at startup and never mutated afterwards.
type MarkupRule struct {
	Source      SourceTag `json:"source"`
	FlatAddend  float64   `json:"flat_addend"`
	SplitSheets bool      `json:"split_sheets"`
	PriceColumn int       `json:"price_column"` // 1-based column index
	HeaderRow   int       `json:"header_row"`   // data rows start below this row
}

// CellNote flags a price cell that was left untouched during markup.
type CellNote struct {
	Sheet string `json:"sheet"`
	Row   int    `json:"row"` // 1-based row index
	Value string `json:"value"`
}
