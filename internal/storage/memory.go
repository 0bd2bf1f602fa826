package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SahinShazi/HealthSync/internal"
)

type MemoryPreferences struct {
	mu    sync.RWMutex
	prefs map[string]internal.Preference
}

func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{prefs: make(map[string]internal.Preference)}
}

func (m *MemoryPreferences) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prefs[key]
	return p.Value, ok, nil
}

func (m *MemoryPreferences) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[key] = internal.Preference{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return nil
}

func (m *MemoryPreferences) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.prefs, key)
	return nil
}

func (m *MemoryPreferences) Close() error { return nil }

// MemoryAppointments keeps bookings in a map with a per-session index.
type MemoryAppointments struct {
	mu        sync.RWMutex
	byID      map[string]*internal.Appointment
	bySession map[string][]string
}

func NewMemoryAppointments() *MemoryAppointments {
	return &MemoryAppointments{
		byID:      make(map[string]*internal.Appointment),
		bySession: make(map[string][]string),
	}
}

// SaveAppointment inserts or replaces a booking. A copy is stored.
func (m *MemoryAppointments) SaveAppointment(_ context.Context, a *internal.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	if _, exists := m.byID[a.ID]; !exists {
		m.bySession[a.SessionID] = append(m.bySession[a.SessionID], a.ID)
	}
	m.byID[a.ID] = &cp
	return nil
}

func (m *MemoryAppointments) GetAppointment(_ context.Context, id string) (*internal.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// ListAppointments returns a session's bookings, newest first.
func (m *MemoryAppointments) ListAppointments(_ context.Context, sessionID string) ([]internal.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.bySession[sessionID]
	out := make([]internal.Appointment, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var (
	_ PreferenceStore       = (*MemoryPreferences)(nil)
	_ AppointmentRepository = (*MemoryAppointments)(nil)
)
