package storage

import (
	"context"

	"github.com/SahinShazi/HealthSync/internal"
)

// PreferenceStore persists small client preferences such as the theme.
// Get reports ok=false for a missing key; that is not an error.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// AppointmentRepository holds bookings for the lifetime of the process.
type AppointmentRepository interface {
	SaveAppointment(ctx context.Context, a *internal.Appointment) error
	GetAppointment(ctx context.Context, id string) (*internal.Appointment, error)
	ListAppointments(ctx context.Context, sessionID string) ([]internal.Appointment, error)
}
