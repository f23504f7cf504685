package stats

import (
	"sync"
	"time"
	"unified-price-bot/internal/types"
)

// Stage names the pipeline step where an error was counted.
const (
	StagePoll    = "poll"
	StageProcess = "process"
	StagePublish = "publish"
)

// Listener receives statistics events as they are recorded, e.g. to feed
// exported metrics. Implementations must be safe for concurrent use.
type Listener interface {
	Processed(source types.SourceTag)
	Published(source types.SourceTag, count int)
	Failed(source types.SourceTag, stage string)
	Idle(source types.SourceTag)
}

// Run aggregates the counters of one bot run. All mutation goes through the
// mutex so both source loops and the shutdown reporter can share it.
type Run struct {
	mu        sync.Mutex
	startedAt time.Time
	processed map[types.SourceTag]int64
	published int64
	errors    int64
	idle      int64
	listener  Listener
}

// NewRun starts the clock. The listener may be nil.
func NewRun(listener Listener) *Run {
	return &Run{
		startedAt: time.Now(),
		processed: make(map[types.SourceTag]int64),
		listener:  listener,
	}
}

// RecordProcessed counts one fully published price list for a source.
func (r *Run) RecordProcessed(source types.SourceTag) {
	r.mu.Lock()
	r.processed[source]++
	r.mu.Unlock()

	if r.listener != nil {
		r.listener.Processed(source)
	}
}

// RecordPublished counts successfully delivered files.
func (r *Run) RecordPublished(source types.SourceTag, count int) {
	r.mu.Lock()
	r.published += int64(count)
	r.mu.Unlock()

	if r.listener != nil {
		r.listener.Published(source, count)
	}
}

// RecordError counts one failed loop iteration.
func (r *Run) RecordError(source types.SourceTag, stage string) {
	r.mu.Lock()
	r.errors++
	r.mu.Unlock()

	if r.listener != nil {
		r.listener.Failed(source, stage)
	}
}

// RecordIdle counts one iteration that found nothing new.
func (r *Run) RecordIdle(source types.SourceTag) {
	r.mu.Lock()
	r.idle++
	r.mu.Unlock()

	if r.listener != nil {
		r.listener.Idle(source)
	}
}

// Snapshot is a point-in-time copy of the run counters.
type Snapshot struct {
	StartedAt        time.Time
	Uptime           time.Duration
	ProcessedChannel int64
	ProcessedSheet   int64
	Published        int64
	Errors           int64
	Idle             int64
}

func (r *Run) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		StartedAt:        r.startedAt,
		Uptime:           time.Since(r.startedAt),
		ProcessedChannel: r.processed[types.SourceChannel],
		ProcessedSheet:   r.processed[types.SourceSheet],
		Published:        r.published,
		Errors:           r.errors,
		Idle:             r.idle,
	}
}
