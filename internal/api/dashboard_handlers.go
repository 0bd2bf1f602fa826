package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/feed"
	"github.com/SahinShazi/HealthSync/internal/service"
)

type metricView struct {
	feed.Metric
	Display string `json:"display"`
}

type dashboardView struct {
	Patient   internal.Patient `json:"patient"`
	Metrics   []metricView     `json:"metrics"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func GetDashboard(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := app.Runner().Record().Snapshot()
		view := dashboardView{
			Patient:   app.Patient(),
			Metrics:   make([]metricView, 0, len(snap.Metrics)),
			UpdatedAt: snap.UpdatedAt,
		}
		for _, m := range snap.Metrics {
			view.Metrics = append(view.Metrics, metricView{Metric: m, Display: m.Display()})
		}
		HandleSuccess(c, app.Logger(), view, nil)
	}
}

func GetMetricHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		metric := c.Param("metric")
		points, ok := app.Runner().Chart(metric)
		if !ok {
			HandleError(c, app.Logger(), fmt.Errorf("no history for %q", metric), 404, "Unknown metric")
			return
		}
		HandleSuccess(c, app.Logger(), points, map[string]any{"metric": metric, "points": len(points)})
	}
}

func GetSleepBreakdown(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), feed.SleepBreakdown(), nil)
	}
}

func GetInsights(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), app.Board().List(), nil)
	}
}

// GetReport serves the health report as a file download.
func GetReport(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := app.Actions().Report()
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", r.Filename))
		c.Data(http.StatusOK, r.ContentType, []byte(r.Body))
	}
}

func PostQuickAction(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		out, err := app.Actions().Run(sessionID(c), &req)
		if errors.Is(err, service.ErrUnknownAction) {
			HandleError(c, app.Logger(), err, 404, "Unknown action")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}
		HandleSuccess(c, app.Logger(), out, nil)
	}
}
