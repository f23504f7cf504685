package commands

import (
	"strings"
	"testing"
	"unified-price-bot/internal/stats"
	"unified-price-bot/internal/types"
)

func TestCommandStart(t *testing.T) {
	t.Parallel()

	text := CommandStart()
	if !strings.Contains(text, "watching its sources") {
		t.Fatalf("CommandStart() = %q, want the monitoring confirmation", text)
	}
}

func TestCommandStats(t *testing.T) {
	t.Parallel()

	run := stats.NewRun(nil)
	run.RecordProcessed(types.SourceChannel)
	run.RecordProcessed(types.SourceChannel)
	run.RecordPublished(types.SourceChannel, 3)
	run.RecordError(types.SourceSheet, stats.StagePoll)

	text := CommandStats(run)
	for _, want := range []string{"Uptime", "`2` channel", "`3`", "`1`"} {
		if !strings.Contains(text, want) {
			t.Fatalf("CommandStats() = %q, want it to contain %q", text, want)
		}
	}
}
