package feed

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/insight"
	"github.com/SahinShazi/HealthSync/internal/metrics"
)

// Publisher receives every snapshot the runner produces.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, s Snapshot) error
}

type RunnerConfig struct {
	Tick            time.Duration
	ChartInterval   time.Duration
	InsightInterval time.Duration
}

// DefaultRunnerConfig mirrors the dashboard's refresh cadence.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Tick:            30 * time.Second,
		ChartInterval:   5 * time.Minute,
		InsightInterval: time.Minute,
	}
}

// Runner owns the random source and drives the record, the chart series
// and the insight board on their own tickers.
type Runner struct {
	cfg     RunnerConfig
	record  *Record
	board   *insight.Board
	logger  internal.Logger
	metrics *metrics.Metrics
	rng     *rand.Rand
	now     func() time.Time

	pubMu      sync.RWMutex
	publishers []Publisher

	chartMu sync.RWMutex
	charts  map[string][]Point
}

func NewRunner(cfg RunnerConfig, record *Record, board *insight.Board, logger internal.Logger, m *metrics.Metrics, rng *rand.Rand) *Runner {
	def := DefaultRunnerConfig()
	if cfg.Tick <= 0 {
		cfg.Tick = def.Tick
	}
	if cfg.ChartInterval <= 0 {
		cfg.ChartInterval = def.ChartInterval
	}
	if cfg.InsightInterval <= 0 {
		cfg.InsightInterval = def.InsightInterval
	}
	if logger == nil {
		logger = internal.NopLogger()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 2040))
	}
	r := &Runner{
		cfg:     cfg,
		record:  record,
		board:   board,
		logger:  logger,
		metrics: m,
		rng:     rng,
		now:     time.Now,
	}
	r.regenerateCharts()
	r.observe(record.Snapshot())
	return r
}

func (r *Runner) AddPublisher(p Publisher) {
	r.pubMu.Lock()
	r.publishers = append(r.publishers, p)
	r.pubMu.Unlock()
}

func (r *Runner) Record() *Record { return r.record }

// Chart returns the current series for a metric.
func (r *Runner) Chart(metric string) ([]Point, bool) {
	r.chartMu.RLock()
	defer r.chartMu.RUnlock()
	pts, ok := r.charts[metric]
	if !ok {
		return nil, false
	}
	out := make([]Point, len(pts))
	copy(out, pts)
	return out, true
}

// Run blocks until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	tick := time.NewTicker(r.cfg.Tick)
	chart := time.NewTicker(r.cfg.ChartInterval)
	insights := time.NewTicker(r.cfg.InsightInterval)
	defer tick.Stop()
	defer chart.Stop()
	defer insights.Stop()

	r.logger.Infof("feed: running (tick=%s chart=%s insight=%s)", r.cfg.Tick, r.cfg.ChartInterval, r.cfg.InsightInterval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("feed: stopped")
			return ctx.Err()
		case <-tick.C:
			r.Step(ctx)
		case <-chart.C:
			r.regenerateCharts()
		case <-insights.C:
			if r.board != nil {
				r.board.Add(insight.Generate(r.rng, r.now()))
			}
		}
	}
}

// Step applies one tick and publishes the result. Publisher failures are
// logged and counted but never stop the feed.
func (r *Runner) Step(ctx context.Context) Snapshot {
	snap := r.record.Tick(r.rng, r.now())
	r.metrics.ObserveTick()
	r.observe(snap)

	r.pubMu.RLock()
	pubs := append([]Publisher(nil), r.publishers...)
	r.pubMu.RUnlock()

	for _, p := range pubs {
		if err := p.Publish(ctx, snap); err != nil {
			r.metrics.ObservePublishError(p.Name())
			r.logger.Warnf("feed: publish to %s failed: %v", p.Name(), err)
		}
	}
	return snap
}

func (r *Runner) observe(s Snapshot) {
	for _, m := range s.Metrics {
		r.metrics.SetFeedValue(m.Name, m.Current)
	}
}

func (r *Runner) regenerateCharts() {
	now := r.now()
	charts := make(map[string][]Point, len(historySpans))
	for name := range historySpans {
		pts, err := History(name, now, r.rng)
		if err != nil {
			continue
		}
		charts[name] = pts
	}
	r.chartMu.Lock()
	r.charts = charts
	r.chartMu.Unlock()
}
