package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/metrics"
	"github.com/SahinShazi/HealthSync/internal/response"
	"github.com/SahinShazi/HealthSync/internal/service"
)

const (
	requestIDKey    = "request_id"
	sessionKey      = "session_id"
	HeaderRequestID = "X-Request-ID"
	HeaderSessionID = "X-Session-ID"
)

// RequestIDMiddleware ensures every request has a correlation/request ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDKey, reqID)
		c.Writer.Header().Set(HeaderRequestID, reqID)
		c.Next()
	}
}

// SessionMiddleware binds the request to a page session. Pages without one
// get a fresh ID and are expected to send it back on later calls. Every
// request counts as activity, so only abandoned sessions expire.
func SessionMiddleware(sessions *service.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderSessionID)
		if id == "" || len(id) > 128 {
			id = service.NewSessionID()
		}
		sessions.Touch(id)
		c.Set(sessionKey, id)
		c.Writer.Header().Set(HeaderSessionID, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string { return c.GetString(sessionKey) }

// RequestLogMiddleware logs one line per request.
func RequestLogMiddleware(logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("[request_id=%s] %s %s %d %s", c.GetString(requestIDKey),
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// MetricsMiddleware counts requests by route template.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}

// RateLimitMiddleware throttles each client address to rps requests per
// second with the given burst.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	l := newIPLimiter(rps, burst)
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.NewAppError(http.StatusTooManyRequests,
				response.UserMessage(http.StatusTooManyRequests, "Too many requests. Please slow down.")))
			return
		}
		c.Next()
	}
}
