package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/notify"
	"github.com/SahinShazi/HealthSync/internal/schedule"
)

const (
	DefaultSessionIdle = 30 * time.Minute
	sessionSweepEvery  = time.Minute
)

// Sessions maps page sessions onto notification scopes. Closing a session
// cancels every delayed action registered against it. Sessions left idle
// for longer than the idle timeout are closed on a later request.
type Sessions struct {
	center *notify.Center
	logger internal.Logger
	idle   time.Duration
	now    func() time.Time

	mu        sync.Mutex
	onClose   []func(id string)
	lastSweep time.Time
}

// NewSessions returns a session registry. A non-positive idle uses
// DefaultSessionIdle.
func NewSessions(center *notify.Center, logger internal.Logger, idle time.Duration) *Sessions {
	if logger == nil {
		logger = internal.NopLogger()
	}
	if idle <= 0 {
		idle = DefaultSessionIdle
	}
	return &Sessions{center: center, logger: logger, idle: idle, now: time.Now}
}

func NewSessionID() string { return uuid.NewString() }

// Open returns the session's schedule group, creating the scope if needed.
func (s *Sessions) Open(id string) *schedule.Group {
	return s.center.Group(id)
}

// OnClose registers fn to run after a session is torn down.
func (s *Sessions) OnClose(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = append(s.onClose, fn)
}

// Touch records activity on the session and, at most once per
// sessionSweepEvery, closes sessions that went idle.
func (s *Sessions) Touch(id string) {
	s.center.Touch(id)

	now := s.now()
	s.mu.Lock()
	due := now.Sub(s.lastSweep) >= sessionSweepEvery
	if due {
		s.lastSweep = now
	}
	s.mu.Unlock()
	if due {
		s.Sweep(now)
	}
}

// Sweep closes every session whose last activity is older than the idle
// timeout at now. It returns the number of sessions closed.
func (s *Sessions) Sweep(now time.Time) int {
	ids := s.center.TeardownIdle(now.Add(-s.idle))
	for _, id := range ids {
		s.runHooks(id)
	}
	if len(ids) > 0 {
		s.logger.Debugf("closed %d idle sessions", len(ids))
	}
	return len(ids)
}

// Close tears the session down and returns how many pending tasks were
// cancelled.
func (s *Sessions) Close(id string) int {
	cancelled := s.center.Teardown(id)
	s.runHooks(id)
	s.logger.Debugf("session %s closed, %d pending tasks cancelled", id, cancelled)
	return cancelled
}

func (s *Sessions) runHooks(id string) {
	s.mu.Lock()
	hooks := append([]func(string){}, s.onClose...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(id)
	}
}
