package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/service"
)

type fieldRequest struct {
	Value string `json:"value"`
}

// PostAppointment books an appointment. A valid form answers 202 with the
// pending booking; confirmation follows in the session's notifications.
func PostAppointment(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.AppointmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		if err := service.ValidateAppointmentRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		appt, res, err := app.Appointments().Book(c.Request.Context(), sessionID(c), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to book appointment")
			return
		}
		if !res.Valid {
			HandleInvalid(c, app.Logger(), res, msgFixFields)
			return
		}
		HandleStatus(c, app.Logger(), http.StatusAccepted, appt, map[string]any{
			"confirm_after_ms": app.Config().BookingDelay.Milliseconds(),
		})
	}
}

// PostAppointmentField is the blur-time check of one booking field.
func PostAppointmentField(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		field := c.Param("field")
		var req fieldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		fe, ok, err := app.Appointments().ValidateField(sessionID(c), field, req.Value)
		if err != nil {
			HandleError(c, app.Logger(), err, 404, "Unknown field")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"field": field, "valid": ok, "message": fe.Message}, nil)
	}
}

func PostAppointmentSummary(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.AppointmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		HandleSuccess(c, app.Logger(), app.Appointments().Summary(&req), nil)
	}
}

func GetAppointment(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		appt, err := app.Appointments().Get(c.Request.Context(), c.Param("id"))
		if err == nil && appt.SessionID != sessionID(c) {
			err = internal.ErrNotFound
		}
		if err != nil {
			HandleError(c, app.Logger(), err, statusOf(err), "Appointment not found")
			return
		}
		HandleSuccess(c, app.Logger(), appt, nil)
	}
}

func ListAppointments(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := app.Appointments().List(c.Request.Context(), sessionID(c))
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch appointments")
			return
		}
		HandleSuccess(c, app.Logger(), list, map[string]any{"count": len(list)})
	}
}

func DeleteAppointment(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		appt, err := app.Appointments().Cancel(c.Request.Context(), sessionID(c), c.Param("id"))
		switch {
		case errors.Is(err, service.ErrNotPending):
			HandleError(c, app.Logger(), err, http.StatusConflict, "Appointment can no longer be cancelled")
			return
		case err != nil:
			HandleError(c, app.Logger(), err, statusOf(err), "Failed to cancel appointment")
			return
		}
		HandleSuccess(c, app.Logger(), appt, nil)
	}
}
