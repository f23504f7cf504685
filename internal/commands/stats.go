package commands

import (
	"fmt"
	log "github.com/sirupsen/logrus"
	"unified-price-bot/internal/stats"
	"unified-price-bot/lib/helpers"
)

// CommandStats renders the counters of the current run.
func CommandStats(run *stats.Run) string {
	log.Debug("processing command /stats")

	s := run.Snapshot()
	return fmt.Sprintf(
		"📊 *Bot statistics*\n\n"+
			"⏱ Uptime: `%s`\n"+
			"✅ Processed: `%s` channel, `%s` sheet\n"+
			"📤 Published: `%s`\n"+
			"❌ Errors: `%s`",
		helpers.FormatDuration(s.Uptime),
		helpers.FormatCount(s.ProcessedChannel),
		helpers.FormatCount(s.ProcessedSheet),
		helpers.FormatCount(s.Published),
		helpers.FormatCount(s.Errors),
	)
}
