package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/response"
)

func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString(requestIDKey)
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	var resp response.APIResponse
	switch status {
	case 400:
		resp = response.BadRequest(msg + ": " + err.Error())
	case 404:
		resp = response.NotFound(msg + ": " + err.Error())
	case 500:
		resp = response.InternalError(response.UserMessage(500, msg))
	default:
		resp = response.NewAppError(status, msg+": "+err.Error())
	}
	c.JSON(status, resp)
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	HandleStatus(c, logger, http.StatusOK, data, meta)
}

// HandleStatus is HandleSuccess with an explicit 2xx status, e.g. 202 for
// work that completes after the response.
func HandleStatus(c *gin.Context, logger internal.Logger, status int, data interface{}, meta map[string]any) {
	requestID := c.GetString(requestIDKey)
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(status, response.Success(data, meta))
}

// HandleInvalid reports a failed form check. The result travels in data so
// the page can mark every field at once.
func HandleInvalid(c *gin.Context, logger internal.Logger, data interface{}, msg string) {
	requestID := c.GetString(requestIDKey)
	logger.Infof("[request_id=%s] validation failed: %s", requestID, msg)
	resp := response.BadRequest(msg)
	resp.Data = data
	c.JSON(http.StatusBadRequest, resp)
}

// statusOf maps repository errors onto HTTP statuses.
func statusOf(err error) int {
	if errors.Is(err, internal.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
