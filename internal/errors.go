package internal

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when a lookup has no result.
var ErrNotFound = errors.New("not found")

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}
