// Package notify keeps the transient messages shown to one client page:
// auto-dismissing toasts, error banners and per-field error annotations.
//
// Everything is keyed by a scope (one page session). Each scope owns a
// schedule.Group, so tearing a scope down cancels every pending dismissal and
// any other delayed work registered against it.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SahinShazi/HealthSync/internal/metrics"
	"github.com/SahinShazi/HealthSync/internal/schedule"
)

const (
	DefaultLifetime = 3 * time.Second
	BannerLifetime  = 5 * time.Second
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

type Placement string

const (
	PlacementToast  Placement = "toast"
	PlacementBanner Placement = "banner"
)

type State string

const (
	StateVisible State = "visible"
	StateRemoved State = "removed"
)

type Token struct {
	ID        uuid.UUID `json:"id"`
	Scope     string    `json:"-"`
	Kind      Kind      `json:"kind"`
	Placement Placement `json:"placement"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	State     State     `json:"state"`
}

// Annotation is an error message attached to one form field.
type Annotation struct {
	Scope     string    `json:"-"`
	Field     string    `json:"field"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type entry struct {
	token  Token
	handle *schedule.Handle
}

type scope struct {
	group       *schedule.Group
	tokens      []*entry
	annotations map[string]Annotation
	lastSeen    time.Time
}

// Center holds the notifications of every live scope.
type Center struct {
	mu      sync.Mutex
	scopes  map[string]*scope
	byID    map[uuid.UUID]string
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewCenter returns an empty center. m may be nil.
func NewCenter(m *metrics.Metrics) *Center {
	return &Center{
		scopes:  make(map[string]*scope),
		byID:    make(map[uuid.UUID]string),
		metrics: m,
		now:     time.Now,
	}
}

// Group returns the schedule group of a scope, creating the scope if needed.
func (c *Center) Group(name string) *schedule.Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope(name).group
}

// Notify shows a toast that removes itself after d. A non-positive d means
// DefaultLifetime.
func (c *Center) Notify(scopeName, message string, kind Kind, d time.Duration) Token {
	if d <= 0 {
		d = DefaultLifetime
	}
	if kind == "" {
		kind = KindInfo
	}
	return c.post(scopeName, message, kind, PlacementToast, d)
}

// Banner shows an error banner for BannerLifetime.
func (c *Center) Banner(scopeName, message string) Token {
	return c.post(scopeName, message, KindError, PlacementBanner, BannerLifetime)
}

func (c *Center) post(scopeName, message string, kind Kind, placement Placement, d time.Duration) Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.scope(scopeName)
	now := c.now()
	e := &entry{token: Token{
		ID:        uuid.New(),
		Scope:     scopeName,
		Kind:      kind,
		Placement: placement,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(d),
		State:     StateVisible,
	}}
	id := e.token.ID
	e.handle = s.group.After(d, func() { c.remove(id, scopeName) })
	s.tokens = append(s.tokens, e)
	c.byID[id] = scopeName
	c.metrics.ObserveNotification(string(kind), string(placement))
	return e.token
}

// Dismiss removes a token of the scope before its timeout. It reports
// whether the token was still visible there; tokens of other scopes are left
// alone.
func (c *Center) Dismiss(scopeName string, id uuid.UUID) bool {
	e := c.remove(id, scopeName)
	if e == nil {
		return false
	}
	e.handle.Cancel()
	return true
}

func (c *Center) remove(id uuid.UUID, scopeName string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	name, ok := c.byID[id]
	if !ok || name != scopeName {
		return nil
	}
	delete(c.byID, id)
	s := c.scopes[name]
	if s == nil {
		return nil
	}
	for i, e := range s.tokens {
		if e.token.ID == id {
			s.tokens = append(s.tokens[:i], s.tokens[i+1:]...)
			e.token.State = StateRemoved
			return e
		}
	}
	return nil
}

// Active returns the visible tokens of a scope in creation order.
func (c *Center) Active(scopeName string) []Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.scopes[scopeName]
	if !ok {
		return []Token{}
	}
	out := make([]Token, 0, len(s.tokens))
	for _, e := range s.tokens {
		out = append(out, e.token)
	}
	return out
}

// AttachFieldError replaces any annotation already on the field.
func (c *Center) AttachFieldError(scopeName, field, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scope(scopeName).annotations[field] = Annotation{
		Scope:     scopeName,
		Field:     field,
		Message:   message,
		CreatedAt: c.now(),
	}
}

func (c *Center) ClearFieldError(scopeName, field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.scopes[scopeName]; ok {
		delete(s.annotations, field)
	}
}

// ClearAll removes every field annotation in the scope. Toasts stay.
func (c *Center) ClearAll(scopeName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.scopes[scopeName]; ok {
		s.annotations = make(map[string]Annotation)
	}
}

// FieldErrors returns the annotations of a scope sorted by field name.
func (c *Center) FieldErrors(scopeName string) []Annotation {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.scopes[scopeName]
	if !ok {
		return []Annotation{}
	}
	out := make([]Annotation, 0, len(s.annotations))
	for _, a := range s.annotations {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// Teardown drops the scope and cancels everything still scheduled in it.
// It returns the number of cancelled callbacks.
func (c *Center) Teardown(scopeName string) int {
	c.mu.Lock()
	s, ok := c.scopes[scopeName]
	if ok {
		delete(c.scopes, scopeName)
		for _, e := range s.tokens {
			delete(c.byID, e.token.ID)
		}
	}
	c.mu.Unlock()

	if !ok {
		return 0
	}
	return s.group.Close()
}

// Touch marks an existing scope as active. It reports whether the scope
// exists; unknown scopes are not created.
func (c *Center) Touch(scopeName string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.scopes[scopeName]
	if ok {
		s.lastSeen = c.now()
	}
	return ok
}

// TeardownIdle drops every scope last used before cutoff, cancelling its
// scheduled work, and returns the dropped scope names.
func (c *Center) TeardownIdle(cutoff time.Time) []string {
	c.mu.Lock()
	var (
		names  []string
		groups []*schedule.Group
	)
	for name, s := range c.scopes {
		if !s.lastSeen.Before(cutoff) {
			continue
		}
		delete(c.scopes, name)
		for _, e := range s.tokens {
			delete(c.byID, e.token.ID)
		}
		names = append(names, name)
		groups = append(groups, s.group)
	}
	c.mu.Unlock()

	for _, g := range groups {
		g.Close()
	}
	return names
}

// Scopes is the number of live scopes.
func (c *Center) Scopes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.scopes)
}

// scope must be called with c.mu held. It counts as activity on the scope.
func (c *Center) scope(name string) *scope {
	s, ok := c.scopes[name]
	if !ok {
		s = &scope{
			group:       schedule.NewGroup(),
			annotations: make(map[string]Annotation),
		}
		c.scopes[name] = s
	}
	s.lastSeen = c.now()
	return s
}
