package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SahinShazi/HealthSync/internal/catalog"
	"github.com/SahinShazi/HealthSync/internal/format"
	"github.com/SahinShazi/HealthSync/internal/service"
)

type doctorView struct {
	catalog.Doctor
	Stars      catalog.StarRow `json:"stars"`
	RatingText string          `json:"rating_text"`
}

func viewOf(d catalog.Doctor) doctorView {
	return doctorView{Doctor: d, Stars: catalog.Stars(d.Rating), RatingText: d.RatingText()}
}

func ListDoctors(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		doctors := app.Catalog().List()
		out := make([]doctorView, 0, len(doctors))
		for _, d := range doctors {
			out = append(out, viewOf(d))
		}
		HandleSuccess(c, app.Logger(), out, map[string]any{"count": len(out)})
	}
}

func GetDoctor(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		d, ok := app.Catalog().Lookup(id)
		if !ok {
			HandleError(c, app.Logger(), fmt.Errorf("doctor %q", id), 404, "Doctor profile not found")
			return
		}
		HandleSuccess(c, app.Logger(), viewOf(d), nil)
	}
}

// PostNewsletter answers 202 when the address is accepted; the thank-you
// toast shows up after the simulated delay.
func PostNewsletter(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.NewsletterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		res, err := app.Blog().Subscribe(sessionID(c), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}
		if !res.Accepted {
			HandleInvalid(c, app.Logger(), res, res.Error)
			return
		}
		HandleStatus(c, app.Logger(), http.StatusAccepted, res, nil)
	}
}

func PostBookmark(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		article := c.Param("article")
		saved := app.Blog().ToggleBookmark(sessionID(c), article)
		HandleSuccess(c, app.Logger(), gin.H{"article": article, "bookmarked": saved}, nil)
	}
}

func PostShare(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ShareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		p, err := app.Blog().Share(sessionID(c), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}
		HandleSuccess(c, app.Logger(), p, nil)
	}
}

func PostNotifyWhenAvailable(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.NotifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		tok, err := app.Blog().NotifyWhenAvailable(sessionID(c), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}
		HandleSuccess(c, app.Logger(), tok, nil)
	}
}

func PostReadingTime(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ReadingTimeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"reading_time": app.Blog().ReadingTime(&req)}, nil)
	}
}

func GetTheme(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), gin.H{"theme": app.Theme().Theme(c.Request.Context(), sessionID(c))}, nil)
	}
}

// PostTheme sets the theme named in the body, or flips it when the body
// names none.
func PostTheme(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ThemeRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				HandleError(c, app.Logger(), err, 400, "Invalid JSON")
				return
			}
			if err := app.Validator().Struct(req); err != nil {
				HandleError(c, app.Logger(), err, 400, "Validation failed")
				return
			}
		}

		ctx := c.Request.Context()
		var theme string
		var saved bool
		if req.Theme == "" {
			theme, saved = app.Theme().ToggleTheme(ctx, sessionID(c))
		} else {
			theme, saved = app.Theme().SetTheme(ctx, sessionID(c), req.Theme)
		}
		HandleSuccess(c, app.Logger(), gin.H{"theme": theme, "saved": saved}, nil)
	}
}

type counterRequest struct {
	Target     float64 `json:"target" validate:"gte=0,lte=1000000000"`
	DurationMS int     `json:"duration_ms" validate:"omitempty,min=16,max=10000"`
}

// PostStatsCounter returns the frames of the stats count-up animation so the
// landing page can replay them without doing the formatting itself.
func PostStatsCounter(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req counterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := app.Validator().Struct(req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}
		d := format.CounterDuration
		if req.DurationMS > 0 {
			d = time.Duration(req.DurationMS) * time.Millisecond
		}
		frames := format.CounterFrames(req.Target, d)
		HandleSuccess(c, app.Logger(), gin.H{"frames": frames}, map[string]any{
			"frame_ms": 16,
			"count":    len(frames),
		})
	}
}
