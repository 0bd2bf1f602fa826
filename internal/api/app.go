package api

import (
	"github.com/go-playground/validator/v10"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/catalog"
	"github.com/SahinShazi/HealthSync/internal/config"
	"github.com/SahinShazi/HealthSync/internal/feed"
	"github.com/SahinShazi/HealthSync/internal/insight"
	"github.com/SahinShazi/HealthSync/internal/metrics"
	"github.com/SahinShazi/HealthSync/internal/notify"
	"github.com/SahinShazi/HealthSync/internal/service"
)

type App interface {
	Logger() internal.Logger
	Config() *config.Config
	Validator() *validator.Validate
	Metrics() *metrics.Metrics
	Patient() internal.Patient

	Center() *notify.Center
	Sessions() *service.Sessions
	Appointments() *service.AppointmentService
	Blog() *service.Blog
	Theme() *service.ThemeService
	Actions() *service.QuickActions

	Runner() *feed.Runner
	Hub() *feed.Hub
	Board() *insight.Board
	Catalog() *catalog.Catalog
}
