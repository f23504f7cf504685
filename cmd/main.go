package main

import (
	"context"
	"fmt"
	"github.com/davecgh/go-spew/spew"
	"github.com/leonelquinteros/gotext"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
	"unified-price-bot/config"
	"unified-price-bot/internal/archive"
	"unified-price-bot/internal/coordinator"
	"unified-price-bot/internal/database"
	"unified-price-bot/internal/markup"
	"unified-price-bot/internal/publish"
	"unified-price-bot/internal/sheets"
	"unified-price-bot/internal/source"
	"unified-price-bot/internal/stats"
	"unified-price-bot/internal/telegram"
	"unified-price-bot/internal/types"
	"unified-price-bot/lib/helpers"
)

type BotMetrics struct {
	FilesProcessed *prometheus.CounterVec
	FilesPublished *prometheus.CounterVec
	PollCycles     *prometheus.CounterVec
	Errors         *prometheus.CounterVec
	StartTime      prometheus.Gauge
	Mutex          sync.Mutex
}

var (
	metrics = NewBotMetrics()
)

func init() {
	config.InitConfig()
	setupLogging()
}

func NewBotMetrics() *BotMetrics {
	metrics := &BotMetrics{
		FilesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "unified",
				Subsystem: "price_bot",
				Name:      "files_processed",
				Help:      "The total number of price lists processed end to end",
			},
			[]string{"source"},
		),
		FilesPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "unified",
				Subsystem: "price_bot",
				Name:      "files_published",
				Help:      "The total number of files delivered to the target channel",
			},
			[]string{"source"},
		),
		PollCycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "unified",
				Subsystem: "price_bot",
				Name:      "poll_cycles",
				Help:      "Poll loop iterations by outcome",
			},
			[]string{"source", "outcome"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "unified",
				Subsystem: "price_bot",
				Name:      "errors",
				Help:      "Recoverable errors by pipeline stage",
			},
			[]string{"source", "stage"},
		),
		StartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "unified",
			Subsystem: "price_bot",
			Name:      "start_time_seconds",
			Help:      "Unix time the bot started",
		}),
	}

	prometheus.MustRegister(metrics.FilesProcessed)
	prometheus.MustRegister(metrics.FilesPublished)
	prometheus.MustRegister(metrics.PollCycles)
	prometheus.MustRegister(metrics.Errors)
	prometheus.MustRegister(metrics.StartTime)

	return metrics
}

// Processed, Published, Failed and Idle make BotMetrics a stats listener.
func (m *BotMetrics) Processed(source types.SourceTag) {
	m.FilesProcessed.WithLabelValues(string(source)).Inc()
	m.PollCycles.WithLabelValues(string(source), "new_data").Inc()
}

func (m *BotMetrics) Published(source types.SourceTag, count int) {
	m.FilesPublished.WithLabelValues(string(source)).Add(float64(count))
}

func (m *BotMetrics) Failed(source types.SourceTag, stage string) {
	m.Errors.WithLabelValues(string(source), stage).Inc()
	m.PollCycles.WithLabelValues(string(source), "error").Inc()
}

func (m *BotMetrics) Idle(source types.SourceTag) {
	m.PollCycles.WithLabelValues(string(source), "nothing_new").Inc()
}

func main() {
	gotext.Configure("locales", strings.ToLower(config.GetString("lang")), "default")

	if err := config.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	err := database.InitDB(config.GetString("db_path"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	LoadTotalsFromDB()
	metrics.StartTime.Set(float64(time.Now().Unix()))
	trackRun()

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token: config.GetString("bot_token"),
		Debug: config.GetBool("debug"),
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	dest, err := telegram.ParseChatRef(config.GetString("target_channel_id"))
	if err != nil {
		log.Fatalf("Invalid target channel: %v", err)
	}

	run := stats.NewRun(metrics)

	pipelines, err := buildPipelines(bot, database.NewStore(), run)
	if err != nil {
		log.Fatalf("Failed to set up sources: %v", err)
	}
	for _, p := range pipelines {
		log.Debugf("%s source polls every %s with rule %s", p.Reader.Tag(), p.Interval, spew.Sdump(p.Rule))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coord := coordinator.New(coordinator.Config{
		Processor:  markup.NewEngine(),
		Publisher:  publish.New(bot, dest),
		Stats:      run,
		Archive:    setupArchive(ctx),
		DrainLimit: config.GetInt("process_recent_limit"),
	}, pipelines...)

	go func() {
		for {
			time.Sleep(5 * time.Minute)
			SaveTotalsToDB()
		}
	}()

	go func() {
		if err := launchMetricsAndHealthServer(config.GetInt("metrics_port")); err != nil {
			log.Errorf("Metrics and health server stopped: %v", err)
		}
	}()

	log.Infof("🚀 Unified price bot started with %d source(s)", len(pipelines))
	coord.Run(ctx)

	SaveTotalsToDB()
	reportFinalStats(run)
}

func setupLogging() {
	log.SetLevel(log.InfoLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	if logFile := config.GetString("log_file"); logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Errorf("Failed to open log file %s: %v", logFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	log.Debug("Starting unified price bot...")
}

func buildPipelines(bot *telegram.Bot, store database.Store, run *stats.Run) ([]coordinator.Pipeline, error) {
	var pipelines []coordinator.Pipeline

	if config.GetBool("enable_channel_source") {
		reader, err := source.NewChannelReader(bot, store, source.ChannelConfig{
			ChannelID:      config.GetInt64("source_channel_id"),
			SkipDuplicates: config.GetBool("channel_skip_duplicates"),
			Commands:       bot.CommandResponder(run),
		})
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, coordinator.Pipeline{
			Reader: reader,
			Rule: types.MarkupRule{
				Source:      types.SourceChannel,
				FlatAddend:  config.GetFloat64("markup_channel"),
				SplitSheets: false,
				PriceColumn: config.GetInt("price_column"),
				HeaderRow:   config.GetInt("header_row"),
			},
			Interval:     time.Duration(config.GetInt("channel_poll_interval")) * time.Second,
			DrainOnStart: config.GetBool("process_recent_on_start"),
		})
	}

	if config.GetBool("enable_sheet_source") {
		client, err := sheets.NewClient(context.Background(), config.GetString("google_credentials_file"))
		if err != nil {
			return nil, err
		}
		reader, err := source.NewSheetReader(client, store, source.SheetConfig{
			SpreadsheetID: config.GetString("spreadsheet_id"),
		})
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, coordinator.Pipeline{
			Reader: reader,
			Rule: types.MarkupRule{
				Source:      types.SourceSheet,
				FlatAddend:  config.GetFloat64("markup_sheet"),
				SplitSheets: true,
				PriceColumn: config.GetInt("price_column"),
				HeaderRow:   config.GetInt("header_row"),
			},
			Interval: time.Duration(config.GetInt("sheet_poll_interval")) * time.Second,
		})
	}

	return pipelines, nil
}

func setupArchive(ctx context.Context) func(name string, data []byte) {
	dir := config.GetString("archive_dir")
	if dir == "" {
		return nil
	}

	keeper := archive.New(dir, time.Duration(config.GetInt("archive_retention_days"))*24*time.Hour)
	keeper.StartJanitor(ctx, 6*time.Hour)
	return keeper.Store
}

// trackRun bumps the persisted counter of bot starts.
func trackRun() {
	runs, err := database.GetTotal("runs")
	if err != nil {
		log.Errorf("Failed to load run counter: %v", err)
		return
	}
	if err := database.SaveTotal("runs", runs+1); err != nil {
		log.Errorf("Failed to update run counter: %v", err)
		return
	}
	log.Debugf("run %d of this installation", int64(runs)+1)
}

func reportFinalStats(run *stats.Run) {
	s := run.Snapshot()
	log.Infof("📊 Final report: %s channel file(s), %s sheet file(s), %s file(s) published, %s error(s), uptime %s",
		helpers.FormatCount(s.ProcessedChannel),
		helpers.FormatCount(s.ProcessedSheet),
		helpers.FormatCount(s.Published),
		helpers.FormatCount(s.Errors),
		helpers.FormatDuration(s.Uptime),
	)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func launchMetricsAndHealthServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", healthCheckHandler)

	log.Infof("Launching metrics and health endpoint on :%d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), http.DefaultServeMux)
}

func LoadTotalsFromDB() {
	metrics.Mutex.Lock()
	defer metrics.Mutex.Unlock()

	loadLabeledTotals("files_processed", func(source, _ string, value float64) {
		metrics.FilesProcessed.WithLabelValues(source).Add(value)
	})
	loadLabeledTotals("files_published", func(source, _ string, value float64) {
		metrics.FilesPublished.WithLabelValues(source).Add(value)
	})
	loadLabeledTotals("errors", func(source, stage string, value float64) {
		metrics.Errors.WithLabelValues(source, stage).Add(value)
	})
	loadLabeledTotals("poll_cycles", func(source, outcome string, value float64) {
		metrics.PollCycles.WithLabelValues(source, outcome).Add(value)
	})

	log.Println("Totals loaded from database.")
}

func loadLabeledTotals(counterName string, callback func(labelOne, labelTwo string, value float64)) {
	totals, _ := database.GetTotalsWithLabels(counterName)
	for labelOne, series := range totals {
		for labelTwo, value := range series {
			callback(labelOne, labelTwo, value)
		}
	}
}

func SaveTotalsToDB() {
	metrics.Mutex.Lock()
	defer metrics.Mutex.Unlock()

	saveCounterVec("files_processed", metrics.FilesProcessed, []string{"source"})
	saveCounterVec("files_published", metrics.FilesPublished, []string{"source"})
	saveCounterVec("errors", metrics.Errors, []string{"source", "stage"})
	saveCounterVec("poll_cycles", metrics.PollCycles, []string{"source", "outcome"})

	log.Println("Totals saved to database.")
}

func saveCounterVec(name string, vec *prometheus.CounterVec, labels []string) {
	metricChan := make(chan prometheus.Metric, 1)
	go func() {
		vec.Collect(metricChan)
		close(metricChan)
	}()

	for metric := range metricChan {
		metricProto := &dto.Metric{}
		if err := metric.Write(metricProto); err != nil {
			log.Printf("Failed to read %s metric: %v", name, err)
			continue
		}

		values := make(map[string]string)
		for _, label := range metricProto.Label {
			values[label.GetName()] = label.GetValue()
		}

		labelTwo := ""
		if len(labels) > 1 {
			labelTwo = values[labels[1]]
		}
		database.SaveTotalWithLabels(name, values[labels[0]], labelTwo, metricProto.Counter.GetValue())
	}
}
