package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SahinShazi/HealthSync/internal"
)

// GetNotifications returns what the page should currently show: toasts,
// banners and field annotations of the session.
func GetNotifications(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := sessionID(c)
		HandleSuccess(c, app.Logger(), gin.H{
			"notifications": app.Center().Active(scope),
			"field_errors":  app.Center().FieldErrors(scope),
		}, nil)
	}
}

func DeleteNotification(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid notification id")
			return
		}
		if !app.Center().Dismiss(sessionID(c), id) {
			HandleError(c, app.Logger(), internal.ErrNotFound, 404, "Notification not found")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"dismissed": id}, nil)
	}
}

// DeleteSession tears the page session down, cancelling everything still
// scheduled for it.
func DeleteSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := sessionID(c)
		n := app.Sessions().Close(scope)
		HandleSuccess(c, app.Logger(), gin.H{"session": scope, "cancelled": n}, nil)
	}
}

func GetHealth(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), gin.H{
			"status":   "ok",
			"sessions": app.Center().Scopes(),
			"streams":  app.Hub().Clients(),
		}, nil)
	}
}
