package pricelist

import (
	"bytes"
	"github.com/xuri/excelize/v2"
	"testing"
)

func TestIsSpreadsheet(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		want bool
	}{
		{"prices.xlsx", true},
		{"PRICES.XLSX", true},
		{"legacy.xls", true},
		{"notes.txt", false},
		{"archive.zip", false},
		{"", false},
	}

	for _, c := range cases {
		if got := IsSpreadsheet(c.name); got != c.want {
			t.Fatalf("IsSpreadsheet(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestUpdateName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"prices.xlsx", "prices_Update.xlsx"},
		{"report.final.xls", "report.final_Update.xls"},
		{"noext", "noext_Update"},
	}

	for _, c := range cases {
		if got := UpdateName(c.in); got != c.want {
			t.Fatalf("UpdateName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildWorkbook(t *testing.T) {
	t.Parallel()

	snap := &Snapshot{
		Title: "Supplier",
		Sheets: []Sheet{
			{
				Title: "Jan",
				Rows: [][]interface{}{
					{"Item", "Price"},
					{"Widget", float64(1000)},
				},
			},
			{
				Title: "Feb",
				Rows: [][]interface{}{
					{"Item", "Price"},
					{"Widget", 10.5},
				},
			},
		},
	}

	data, err := BuildWorkbook(snap)
	if err != nil {
		t.Fatalf("BuildWorkbook() err = %v", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() err = %v", err)
	}
	defer wb.Close()

	list := wb.GetSheetList()
	if len(list) != 2 || list[0] != "Jan" || list[1] != "Feb" {
		t.Fatalf("GetSheetList() = %v, want [Jan Feb]", list)
	}

	if got, _ := wb.GetCellValue("Jan", "B2"); got != "1000" {
		t.Fatalf("Jan B2 = %q, want %q", got, "1000")
	}
	if got, _ := wb.GetCellValue("Feb", "B2"); got != "10.5" {
		t.Fatalf("Feb B2 = %q, want %q", got, "10.5")
	}
}

func TestBuildWorkbookRejectsEmptySnapshot(t *testing.T) {
	t.Parallel()

	if _, err := BuildWorkbook(&Snapshot{Title: "Empty"}); err == nil {
		t.Fatal("BuildWorkbook() expected error for a snapshot without sheets")
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	snap := func() *Snapshot {
		return &Snapshot{
			Title: "Supplier",
			Sheets: []Sheet{
				{Title: "Jan", Rows: [][]interface{}{{"Widget", float64(1000)}}},
			},
		}
	}

	a := snap()
	if Fingerprint(a) != Fingerprint(snap()) {
		t.Fatal("Fingerprint() changed between identical snapshots")
	}

	b := snap()
	b.Sheets[0].Rows[0][1] = float64(1001)
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatal("Fingerprint() did not change after a cell edit")
	}

	c := snap()
	c.Sheets[0].Title = "Feb"
	if Fingerprint(a) == Fingerprint(c) {
		t.Fatal("Fingerprint() did not change after a sheet rename")
	}
}

func TestDataHash(t *testing.T) {
	t.Parallel()

	if DataHash([]byte("a")) == DataHash([]byte("b")) {
		t.Fatal("DataHash() collided on different content")
	}
	if DataHash([]byte("a")) != DataHash([]byte("a")) {
		t.Fatal("DataHash() is not stable")
	}
}
