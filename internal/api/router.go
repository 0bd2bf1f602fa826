package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", HeaderRequestID, HeaderSessionID},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", HeaderRequestID, HeaderSessionID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// NewRouter builds the HTTP surface of the site.
func NewRouter(app App) *gin.Engine {
	cfg := app.Config()
	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		RequestLogMiddleware(app.Logger()),
		MetricsMiddleware(app.Metrics()),
		cors.New(corsConfig(cfg.CORSOrigins)),
	)

	r.GET("/healthz", GetHealth(app))
	r.GET("/metrics", gin.WrapH(app.Metrics().Handler()))

	limit := RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	api := r.Group("/api", SessionMiddleware(app.Sessions()))
	{
		api.POST("/validate/vitals", PostValidateVitals(app))
		api.POST("/validate/:kind", PostValidate(app))
		api.POST("/forms/validate", limit, PostForm(app))

		api.GET("/notifications", GetNotifications(app))
		api.DELETE("/notifications/:id", DeleteNotification(app))
		api.DELETE("/session", DeleteSession(app))

		api.GET("/preferences/theme", GetTheme(app))
		api.POST("/preferences/theme", PostTheme(app))
	}

	appointments := api.Group("/appointments")
	{
		appointments.GET("", ListAppointments(app))
		appointments.POST("", limit, PostAppointment(app))
		appointments.POST("/summary", PostAppointmentSummary(app))
		appointments.POST("/fields/:field", PostAppointmentField(app))
		appointments.GET("/:id", GetAppointment(app))
		appointments.DELETE("/:id", DeleteAppointment(app))
	}

	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("", GetDashboard(app))
		dashboard.GET("/history/:metric", GetMetricHistory(app))
		dashboard.GET("/sleep", GetSleepBreakdown(app))
		dashboard.GET("/insights", GetInsights(app))
		dashboard.GET("/report", GetReport(app))
		dashboard.POST("/actions", PostQuickAction(app))
		dashboard.GET("/stream", gin.WrapH(app.Hub()))
	}

	api.GET("/doctors", ListDoctors(app))
	api.GET("/doctors/:id", GetDoctor(app))
	api.POST("/stats/counter", PostStatsCounter(app))

	blog := api.Group("/blog")
	{
		blog.POST("/newsletter", limit, PostNewsletter(app))
		blog.POST("/bookmarks/:article", PostBookmark(app))
		blog.POST("/share", PostShare(app))
		blog.POST("/notify", PostNotifyWhenAvailable(app))
		blog.POST("/reading-time", PostReadingTime(app))
	}

	return r
}
