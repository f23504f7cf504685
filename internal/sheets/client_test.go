package sheets

import (
	"testing"
)

func TestQuoteSheetTitle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Prices", "'Prices'"},
		{"Jan 2024", "'Jan 2024'"},
		{"O'Brien's list", "'O''Brien''s list'"},
	}

	for _, c := range cases {
		if got := quoteSheetTitle(c.in); got != c.want {
			t.Fatalf("quoteSheetTitle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
