// Package schedule runs delayed callbacks that can be cancelled.
//
// Every delayed action on the site (simulated submissions, auto-dismissing
// notifications) is owned by a Group. Closing the group cancels whatever is
// still pending, so a callback never runs against state that was torn down.
package schedule

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	statePending int32 = iota
	stateFired
	stateCancelled
)

// Handle identifies one scheduled callback.
type Handle struct {
	state atomic.Int32
	timer *time.Timer
	group *Group
	due   time.Time
}

// Cancel stops the callback. It reports true when the callback had not run
// yet and now never will.
func (h *Handle) Cancel() bool {
	if h == nil || !h.state.CompareAndSwap(statePending, stateCancelled) {
		return false
	}
	if h.timer != nil {
		h.timer.Stop()
	}
	h.group.forget(h)
	return true
}

// Pending reports whether the callback is still waiting to run.
func (h *Handle) Pending() bool {
	return h != nil && h.state.Load() == statePending
}

// Cancelled reports whether the callback was cancelled, including handles
// refused by a closed group.
func (h *Handle) Cancelled() bool {
	return h != nil && h.state.Load() == stateCancelled
}

// Due is when the callback is set to fire.
func (h *Handle) Due() time.Time { return h.due }

// Group owns a set of handles with a shared lifetime.
type Group struct {
	mu      sync.Mutex
	pending map[*Handle]struct{}
	closed  bool
}

func NewGroup() *Group {
	return &Group{pending: make(map[*Handle]struct{})}
}

// After runs fn once d has elapsed unless the handle or the group is
// cancelled first. On a closed group the returned handle is already cancelled.
func (g *Group) After(d time.Duration, fn func()) *Handle {
	h := &Handle{group: g, due: time.Now().Add(d)}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		h.state.Store(stateCancelled)
		return h
	}
	h.timer = time.AfterFunc(d, func() {
		if !h.state.CompareAndSwap(statePending, stateFired) {
			return
		}
		g.forget(h)
		fn()
	})
	g.pending[h] = struct{}{}
	return h
}

// Close cancels every pending handle and rejects new ones. It returns how
// many callbacks were cancelled.
func (g *Group) Close() int {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return 0
	}
	g.closed = true
	handles := make([]*Handle, 0, len(g.pending))
	for h := range g.pending {
		handles = append(handles, h)
	}
	g.mu.Unlock()

	n := 0
	for _, h := range handles {
		if h.Cancel() {
			n++
		}
	}
	return n
}

// Pending is the number of callbacks waiting to run.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

func (g *Group) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

func (g *Group) forget(h *Handle) {
	g.mu.Lock()
	delete(g.pending, h)
	g.mu.Unlock()
}
