// Package service holds the page-level behaviour behind the HTTP handlers:
// booking, newsletter and blog actions, the theme preference and sessions.
package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ErrNotPending is returned when a booking can no longer be cancelled.
var ErrNotPending = errors.New("appointment is not pending")

// ErrUnknownAction is returned for a quick action label the dashboard does
// not offer.
var ErrUnknownAction = errors.New("unknown quick action")

// Booking outcomes reported to metrics.
const (
	outcomeInvalid   = "invalid"
	outcomePending   = "pending"
	outcomeConfirmed = "confirmed"
	outcomeCancelled = "cancelled"
)
