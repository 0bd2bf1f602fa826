package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/catalog"
	"github.com/SahinShazi/HealthSync/internal/form"
	"github.com/SahinShazi/HealthSync/internal/format"
	"github.com/SahinShazi/HealthSync/internal/metrics"
	"github.com/SahinShazi/HealthSync/internal/notify"
	"github.com/SahinShazi/HealthSync/internal/schedule"
	"github.com/SahinShazi/HealthSync/internal/storage"
	hsvalidate "github.com/SahinShazi/HealthSync/internal/validate"
)

const (
	MsgBooked           = "Appointment booked successfully! You will receive a confirmation email shortly."
	BookedLifetime      = 5 * time.Second
	DefaultBookingDelay = 2 * time.Second
	RedirectDashboard   = "/dashboard"
)

// AppointmentRequest is the booking form as posted by the page.
type AppointmentRequest struct {
	Type          string `json:"appointmentType" validate:"max=64"`
	DoctorID      string `json:"selectedDoctor" validate:"max=64"`
	PreferredDate string `json:"preferredDate" validate:"max=32"`
	PreferredTime string `json:"preferredTime" validate:"max=16"`
	Name          string `json:"fullName" validate:"max=120"`
	Email         string `json:"email" validate:"max=254"`
	Phone         string `json:"phone" validate:"max=32"`
	DateOfBirth   string `json:"dateOfBirth" validate:"max=32"`
	Notes         string `json:"notes" validate:"max=2000"`
}

// ValidateAppointmentRequest rejects oversized payloads. Field rules are the
// form controller's job.
func ValidateAppointmentRequest(req *AppointmentRequest) error {
	return validate.Struct(req)
}

func (r *AppointmentRequest) Form() form.Form {
	return form.AppointmentForm(r.Type, r.DoctorID, r.PreferredDate, r.PreferredTime,
		r.Name, r.Email, r.Phone, r.DateOfBirth, r.Notes)
}

// Value returns the posted value of a booking form field.
func (r *AppointmentRequest) Value(field string) string {
	switch field {
	case form.FieldType:
		return r.Type
	case form.FieldDoctor:
		return r.DoctorID
	case form.FieldPreferredDate:
		return r.PreferredDate
	case form.FieldPreferredTime:
		return r.PreferredTime
	case form.FieldName:
		return r.Name
	case form.FieldEmail:
		return r.Email
	case form.FieldPhone:
		return r.Phone
	case form.FieldDateOfBirth:
		return r.DateOfBirth
	case form.FieldNotes:
		return r.Notes
	}
	return ""
}

// Summary is the live booking summary shown beside the form.
type Summary struct {
	Type     string `json:"type"`
	Doctor   string `json:"doctor"`
	DateTime string `json:"date_time"`
}

type AppointmentService struct {
	repo       storage.AppointmentRepository
	center     *notify.Center
	controller *form.Controller
	catalog    *catalog.Catalog
	metrics    *metrics.Metrics
	logger     internal.Logger
	delay      time.Duration
	now        func() time.Time
	tracer     trace.Tracer

	mu      sync.Mutex
	pending map[string]*schedule.Handle
}

// NewAppointmentService wires booking to its collaborators. A non-positive
// delay uses DefaultBookingDelay. m may be nil.
func NewAppointmentService(repo storage.AppointmentRepository, center *notify.Center, cat *catalog.Catalog,
	m *metrics.Metrics, logger internal.Logger, delay time.Duration) *AppointmentService {
	if logger == nil {
		logger = internal.NopLogger()
	}
	if delay <= 0 {
		delay = DefaultBookingDelay
	}
	s := &AppointmentService{
		repo:    repo,
		center:  center,
		catalog: cat,
		metrics: m,
		logger:  logger,
		delay:   delay,
		now:     time.Now,
		tracer:  otel.Tracer("github.com/SahinShazi/HealthSync/internal/service"),
		pending: make(map[string]*schedule.Handle),
	}
	s.controller = form.NewController(center, form.AppointmentRules(func() time.Time { return s.now() }))
	return s
}

// Book validates the request and, when it passes, stores a pending
// appointment whose confirmation fires after the booking delay. An invalid
// form returns a nil appointment and the result describing every problem.
func (s *AppointmentService) Book(ctx context.Context, scope string, req *AppointmentRequest) (*internal.Appointment, form.Result, error) {
	ctx, span := s.tracer.Start(ctx, "appointments.Book")
	defer span.End()

	if err := ValidateAppointmentRequest(req); err != nil {
		span.SetStatus(codes.Error, "malformed request")
		return nil, form.Result{}, err
	}

	res := s.controller.Validate(ctx, scope, req.Form())
	if strings.TrimSpace(req.DoctorID) != "" {
		if _, ok := s.catalog.Lookup(req.DoctorID); !ok {
			s.center.Banner(scope, form.MsgNoDoctor)
			res.Banners = append(res.Banners, form.MsgNoDoctor)
			res.Valid = false
		}
	}
	if !res.Valid {
		s.metrics.ObserveBooking(outcomeInvalid)
		span.SetAttributes(attribute.Bool("appointment.valid", false))
		return nil, res, nil
	}

	// A teardown during the save closes this group; the booking is then
	// cancelled instead of confirmed.
	group := s.center.Group(scope)

	appt := &internal.Appointment{
		ID:            uuid.NewString(),
		SessionID:     scope,
		Type:          req.Type,
		DoctorID:      req.DoctorID,
		DoctorName:    s.catalog.Name(req.DoctorID),
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		DateOfBirth:   req.DateOfBirth,
		Notes:         req.Notes,
		Status:        internal.AppointmentPending,
		CreatedAt:     s.now(),
	}
	if err := s.repo.SaveAppointment(ctx, appt); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, res, fmt.Errorf("service: save appointment: %w", err)
	}

	s.mu.Lock()
	id := appt.ID
	h := group.After(s.delay, func() { s.confirm(scope, id) })
	if !h.Cancelled() {
		s.pending[id] = h
	}
	s.mu.Unlock()

	if h.Cancelled() {
		appt.Status = internal.AppointmentCancelled
		if err := s.repo.SaveAppointment(ctx, appt); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, res, fmt.Errorf("service: cancel appointment: %w", err)
		}
		s.metrics.ObserveBooking(outcomeCancelled)
		s.logger.Infof("appointment %s cancelled, session %s closed while booking", appt.ID, scope)
		return appt, res, nil
	}

	s.metrics.ObserveBooking(outcomePending)
	span.SetAttributes(
		attribute.Bool("appointment.valid", true),
		attribute.String("appointment.id", appt.ID),
		attribute.String("appointment.doctor", appt.DoctorID),
	)
	s.logger.Infof("appointment %s pending for session %s", appt.ID, scope)
	return appt, res, nil
}

func (s *AppointmentService) confirm(scope, id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()

	ctx := context.Background()
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		s.logger.Errorf("confirm appointment %s: %v", id, err)
		return
	}
	if appt.Status != internal.AppointmentPending {
		return
	}
	now := s.now()
	appt.Status = internal.AppointmentConfirmed
	appt.ConfirmedAt = &now
	appt.Redirect = RedirectDashboard
	if err := s.repo.SaveAppointment(ctx, appt); err != nil {
		s.logger.Errorf("confirm appointment %s: %v", id, err)
		return
	}

	s.center.Notify(scope, MsgBooked, notify.KindSuccess, BookedLifetime)
	s.metrics.ObserveBooking(outcomeConfirmed)
	s.logger.Infof("appointment %s confirmed", id)
}

// Cancel aborts a pending booking of the session. Bookings of other sessions
// are reported as not found.
func (s *AppointmentService) Cancel(ctx context.Context, scope, id string) (*internal.Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.SessionID != scope {
		return nil, internal.ErrNotFound
	}

	s.mu.Lock()
	h := s.pending[id]
	cancelled := h != nil && h.Cancel()
	if cancelled {
		delete(s.pending, id)
	}
	s.mu.Unlock()
	if !cancelled {
		return appt, ErrNotPending
	}

	appt.Status = internal.AppointmentCancelled
	if err := s.repo.SaveAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("service: cancel appointment: %w", err)
	}
	s.metrics.ObserveBooking(outcomeCancelled)
	return appt, nil
}

// Abandon marks every pending booking of a torn-down session as cancelled.
// Its timers are already gone with the session's schedule group.
func (s *AppointmentService) Abandon(scope string) {
	ctx := context.Background()
	list, err := s.repo.ListAppointments(ctx, scope)
	if err != nil {
		s.logger.Errorf("abandon session %s: %v", scope, err)
		return
	}
	for i := range list {
		appt := &list[i]
		s.mu.Lock()
		h, ok := s.pending[appt.ID]
		if ok {
			h.Cancel()
			delete(s.pending, appt.ID)
		}
		s.mu.Unlock()
		if !ok || appt.Status != internal.AppointmentPending {
			continue
		}
		appt.Status = internal.AppointmentCancelled
		if err := s.repo.SaveAppointment(ctx, appt); err != nil {
			s.logger.Errorf("abandon appointment %s: %v", appt.ID, err)
			continue
		}
		s.metrics.ObserveBooking(outcomeCancelled)
	}
}

func (s *AppointmentService) Get(ctx context.Context, id string) (*internal.Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

func (s *AppointmentService) List(ctx context.Context, scope string) ([]internal.Appointment, error) {
	return s.repo.ListAppointments(ctx, scope)
}

// ValidateField runs the blur-time check of one booking field. Unknown field
// names are rejected.
func (s *AppointmentService) ValidateField(scope, field, value string) (form.FieldError, bool, error) {
	switch field {
	case form.FieldType, form.FieldPreferredDate, form.FieldPreferredTime, form.FieldName,
		form.FieldEmail, form.FieldPhone, form.FieldDateOfBirth, form.FieldNotes:
	default:
		return form.FieldError{}, false, fmt.Errorf("service: unknown field %q", field)
	}
	fe, ok := s.controller.ValidateField(scope, form.Field{Name: field, Value: value, Required: form.Required(field)})
	return fe, ok, nil
}

// Summary renders the booking summary. Anything unset reads "Not selected".
func (s *AppointmentService) Summary(req *AppointmentRequest) Summary {
	sum := Summary{
		Type:     catalog.NotSelected,
		Doctor:   s.catalog.Name(req.DoctorID),
		DateTime: catalog.NotSelected,
	}
	if t := strings.TrimSpace(req.Type); t != "" {
		sum.Type = t
	}
	tod := strings.TrimSpace(req.PreferredTime)
	if day, ok := hsvalidate.ParseDate(req.PreferredDate, s.now().Location()); ok && tod != "" {
		sum.DateTime = format.SummaryDateTime(day, tod)
	}
	return sum
}
