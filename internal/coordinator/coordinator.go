package coordinator

import (
	"context"
	"errors"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
	"unified-price-bot/internal/markup"
	"unified-price-bot/internal/pricelist"
	"unified-price-bot/internal/publish"
	"unified-price-bot/internal/source"
	"unified-price-bot/internal/stats"
	"unified-price-bot/internal/types"
)

// Processor applies a markup rule to one price list.
type Processor interface {
	Apply(f *pricelist.File, rule types.MarkupRule) (*markup.Output, error)
}

// Publisher delivers a processed output, returning how many files made it.
type Publisher interface {
	Publish(out *markup.Output) (int, error)
}

// Pipeline wires one source to its markup rule and polling cadence.
type Pipeline struct {
	Reader       source.Reader
	Rule         types.MarkupRule
	Interval     time.Duration
	DrainOnStart bool
}

// Config carries the collaborators shared by every pipeline.
type Config struct {
	Processor  Processor
	Publisher  Publisher
	Stats      *stats.Run
	Archive    func(name string, data []byte) // optional audit copy hook
	DrainLimit int
}

// Coordinator runs one polling loop per configured source. The loops never
// block each other; the run statistics are the only state they share.
type Coordinator struct {
	cfg       Config
	pipelines []Pipeline
}

func New(cfg Config, pipelines ...Pipeline) *Coordinator {
	return &Coordinator{cfg: cfg, pipelines: pipelines}
}

// Run blocks until the context is cancelled and every loop has finished its
// current iteration. Cancellation is observed between iterations only, so a
// file that is being processed always goes out before the loop stops.
func (c *Coordinator) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, p := range c.pipelines {
		wg.Add(1)
		go func(p Pipeline) {
			defer wg.Done()
			c.runLoop(ctx, p)
		}(p)
	}
	wg.Wait()
}

func (c *Coordinator) runLoop(ctx context.Context, p Pipeline) {
	tag := p.Reader.Tag()
	log.Infof("🚀 %s source loop started, checking every %s", tag, p.Interval)

	if p.DrainOnStart {
		c.drainBacklog(ctx, p)
	} else {
		c.iterate(p)
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("🛑 %s source loop stopped", tag)
			return
		case <-ticker.C:
			c.iterate(p)
		}
	}
}

// drainBacklog catches up on files that piled up while the bot was down,
// oldest first, up to the configured limit.
func (c *Coordinator) drainBacklog(ctx context.Context, p Pipeline) {
	limit := c.cfg.DrainLimit
	if limit <= 0 {
		limit = 1
	}

	for i := 0; i < limit; i++ {
		if ctx.Err() != nil {
			return
		}
		if c.iterate(p) != outcomeProcessed {
			return
		}
	}
	log.Infof("%s backlog drain stopped at the limit of %d file(s)", p.Reader.Tag(), limit)
}

type outcome int

const (
	outcomeIdle outcome = iota
	outcomeProcessed
	outcomeFailed
)

// iterate runs one poll → process → publish pass for a pipeline. Every
// failure is logged and counted here; nothing propagates to the loop.
// Operations run against a background context so an iteration in flight is
// never aborted by shutdown.
func (c *Coordinator) iterate(p Pipeline) outcome {
	tag := p.Reader.Tag()
	run := c.cfg.Stats

	log.Debugf("[%s] polling", tag)
	file, err := p.Reader.Poll(context.Background())
	if err != nil {
		log.Errorf("❌ [%s] poll failed: %v", tag, err)
		run.RecordError(tag, stats.StagePoll)
		return outcomeFailed
	}
	if file == nil {
		log.Debugf("[%s] nothing new", tag)
		run.RecordIdle(tag)
		return outcomeIdle
	}

	log.Infof("📥 [%s] new price list %s (%s)", tag, file.Name, humanize.Bytes(uint64(len(file.Data))))

	out, err := c.cfg.Processor.Apply(file, p.Rule)
	if err != nil {
		log.Errorf("❌ [%s] processing %s failed: %v", tag, file.Name, err)
		run.RecordError(tag, stats.StageProcess)
		return outcomeFailed
	}

	published, err := c.cfg.Publisher.Publish(out)
	run.RecordPublished(tag, published)
	c.archive(out, err)
	if err != nil {
		log.Errorf("❌ [%s] delivered %d of %d file(s) from %s: %v", tag, published, len(out.Files), file.Name, err)
		run.RecordError(tag, stats.StagePublish)
		return outcomeFailed
	}

	run.RecordProcessed(tag)
	log.Infof("✅ [%s] published %d file(s) from %s", tag, published, file.Name)
	return outcomeProcessed
}

// archive copies the files that were actually delivered.
func (c *Coordinator) archive(out *markup.Output, pubErr error) {
	if c.cfg.Archive == nil {
		return
	}

	failed := make(map[string]bool)
	var pf *publish.Failure
	if errors.As(pubErr, &pf) {
		for _, name := range pf.Failed {
			failed[name] = true
		}
	}

	for _, f := range out.Files {
		if !failed[f.Name] {
			c.cfg.Archive(f.Name, f.Data)
		}
	}
}
