package response

import "github.com/SahinShazi/HealthSync/internal"

type APIResponse struct {
	Data  interface{}        `json:"data,omitempty"`
	Meta  map[string]any     `json:"meta,omitempty"`
	Error *internal.AppError `json:"error,omitempty"`
}

func Success(data interface{}, meta map[string]any) APIResponse {
	return APIResponse{Data: data, Meta: meta, Error: nil}
}

func BadRequest(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(400, msg)}
}

func InternalError(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(500, msg)}
}

func NotFound(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(404, msg)}
}

func NewAppError(status int, msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(status, msg)}
}

// UserMessage maps an HTTP status to the message shown to the visitor.
// fallback is used for statuses without a fixed wording.
func UserMessage(status int, fallback string) string {
	switch status {
	case 400:
		return "Invalid request. Please check your input."
	case 401:
		return "Please log in to continue."
	case 403:
		return "You don't have permission to perform this action."
	case 404:
		return "The requested resource was not found."
	case 500:
		return "Server error. Please try again later."
	}
	if fallback == "" {
		return "An error occurred. Please try again."
	}
	return fallback
}
