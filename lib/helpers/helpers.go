package helpers

import (
	"fmt"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"time"
)

// FormatTimestamp renders a caption-friendly local timestamp.
func FormatTimestamp(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatDuration renders an uptime as whole hours and minutes.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	hours := d / time.Hour
	minutes := (d % time.Hour) / time.Minute

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatCount renders a count with thousand separators.
func FormatCount(n int64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d", n)
}
