package helpers

import (
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 7, 5, 14, 30, 0, 0, time.UTC)
	if got := FormatTimestamp(ts); got != "05.07.2024 14:30" {
		t.Fatalf("FormatTimestamp() = %q, want %q", got, "05.07.2024 14:30")
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0m"},
		{25 * time.Minute, "25m"},
		{90 * time.Minute, "1h 30m"},
		{2 * time.Hour, "2h 0m"},
		{26*time.Hour + 29*time.Second, "26h 0m"},
	}

	for _, c := range cases {
		if got := FormatDuration(c.in); got != c.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1234567, "1,234,567"},
	}

	for _, c := range cases {
		if got := FormatCount(c.in); got != c.want {
			t.Fatalf("FormatCount(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}
