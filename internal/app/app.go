// Package app assembles the running site from configuration.
package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-playground/validator/v10"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/catalog"
	"github.com/SahinShazi/HealthSync/internal/config"
	"github.com/SahinShazi/HealthSync/internal/feed"
	"github.com/SahinShazi/HealthSync/internal/insight"
	"github.com/SahinShazi/HealthSync/internal/metrics"
	"github.com/SahinShazi/HealthSync/internal/notify"
	"github.com/SahinShazi/HealthSync/internal/service"
	"github.com/SahinShazi/HealthSync/internal/storage"
	"github.com/SahinShazi/HealthSync/internal/validate"
)

// App owns every long-lived component. Nothing here is global.
type App struct {
	cfg       *config.Config
	logger    internal.Logger
	validator *validator.Validate
	metrics   *metrics.Metrics
	patient   internal.Patient

	prefs        storage.PreferenceStore
	center       *notify.Center
	sessions     *service.Sessions
	appointments *service.AppointmentService
	blog         *service.Blog
	theme        *service.ThemeService
	actions      *service.QuickActions

	runner  *feed.Runner
	hub     *feed.Hub
	board   *insight.Board
	catalog *catalog.Catalog
	mqtt    mqtt.Client

	closeOnce sync.Once
}

// New wires the site. Optional backends that cannot be reached degrade with
// a warning; only a broken embedded catalog is fatal.
func New(ctx context.Context, cfg *config.Config, logger internal.Logger) (*App, error) {
	if logger == nil {
		logger = internal.NopLogger()
	}
	now := time.Now()
	a := &App{
		cfg:       cfg,
		logger:    logger,
		validator: validate.New(time.Now),
		metrics:   metrics.New(),
		patient:   internal.DemoPatient(),
	}

	cat, err := catalog.New(logger)
	if err != nil {
		return nil, err
	}
	a.catalog = cat

	a.prefs = storage.OpenPreferenceStore(ctx, cfg, logger)
	a.center = notify.NewCenter(a.metrics)
	a.sessions = service.NewSessions(a.center, logger, cfg.SessionIdle)
	a.appointments = service.NewAppointmentService(storage.NewMemoryAppointments(), a.center, cat,
		a.metrics, logger, cfg.BookingDelay)
	a.blog = service.NewBlog(a.center, logger, cfg.NewsletterDelay)
	a.theme = service.NewThemeService(a.prefs, logger)
	a.sessions.OnClose(a.appointments.Abandon)
	a.sessions.OnClose(a.blog.Forget)

	record := feed.NewRecord(a.patient.ID, now)
	a.board = insight.NewBoard(insight.BoardSize)
	a.board.Seed(now)
	rng := rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix())))
	a.runner = feed.NewRunner(feed.RunnerConfig{
		Tick:            cfg.FeedTick,
		ChartInterval:   cfg.FeedChartInterval,
		InsightInterval: cfg.FeedInsightInterval,
	}, record, a.board, logger, a.metrics, rng)
	a.hub = feed.NewHub(record, logger)
	a.runner.AddPublisher(a.hub)
	a.actions = service.NewQuickActions(a.patient, record, a.center)

	if cfg.MQTTBroker != "" {
		client, err := feed.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientID, logger)
		if err != nil {
			logger.Warnf("mqtt unavailable, snapshots stay local: %v", err)
		} else {
			a.mqtt = client
			a.runner.AddPublisher(feed.NewMQTTPublisher(client, byte(cfg.MQTTQoS)))
		}
	}
	return a, nil
}

// Start runs the feed and, when configured, the catalog file watcher until
// ctx is done. It does not block.
func (a *App) Start(ctx context.Context) {
	if a.cfg.DoctorsFile != "" {
		if err := a.catalog.Watch(ctx, a.cfg.DoctorsFile); err != nil {
			a.logger.Warnf("doctor profiles file not loaded, using built-in profiles: %v", err)
		}
	}
	go func() {
		if err := a.runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Errorf("feed runner stopped: %v", err)
		}
	}()
}

// Close releases the broker connection and flushes the preference store.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		if a.mqtt != nil {
			a.mqtt.Disconnect(250)
		}
		err = a.prefs.Close()
	})
	return err
}

func (a *App) Logger() internal.Logger                   { return a.logger }
func (a *App) Config() *config.Config                    { return a.cfg }
func (a *App) Validator() *validator.Validate            { return a.validator }
func (a *App) Metrics() *metrics.Metrics                 { return a.metrics }
func (a *App) Patient() internal.Patient                 { return a.patient }
func (a *App) Center() *notify.Center                    { return a.center }
func (a *App) Sessions() *service.Sessions               { return a.sessions }
func (a *App) Appointments() *service.AppointmentService { return a.appointments }
func (a *App) Blog() *service.Blog                       { return a.blog }
func (a *App) Theme() *service.ThemeService              { return a.theme }
func (a *App) Actions() *service.QuickActions            { return a.actions }
func (a *App) Runner() *feed.Runner                      { return a.runner }
func (a *App) Hub() *feed.Hub                            { return a.hub }
func (a *App) Board() *insight.Board                     { return a.board }
func (a *App) Catalog() *catalog.Catalog                 { return a.catalog }
