package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/SahinShazi/HealthSync/internal"
)

// StreamMessage is what dashboard clients receive on the stream.
type StreamMessage struct {
	Type     string    `json:"type"` // "snapshot", "pong"
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

type inbound struct {
	Type string `json:"type"`
}

const (
	clientBuffer = 16
	writeTimeout = 10 * time.Second
)

var errSlowClient = errors.New("feed: stream client fell behind")

// client owns one stream. Messages are queued on out and written by
// writeLoop so a stalled reader never blocks the publisher.
type client struct {
	conn *websocket.Conn
	out  chan StreamMessage
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, out: make(chan StreamMessage, clientBuffer), done: make(chan struct{})}
}

// enqueue reports false when the client is gone or its queue is full.
func (c *client) enqueue(msg StreamMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- msg:
		return true
	default:
		return false
	}
}

func (c *client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := websocket.JSON.Send(c.conn, msg); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub fans snapshots out to connected websocket clients.
type Hub struct {
	record *Record
	logger internal.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(record *Record, logger internal.Logger) *Hub {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &Hub{record: record, logger: logger, clients: make(map[*client]struct{})}
}

func (h *Hub) Name() string { return "websocket" }

// Publish queues the snapshot for every client without waiting on the
// network. Clients whose queue is full are dropped.
func (h *Hub) Publish(_ context.Context, s Snapshot) error {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	var dropped int
	for _, c := range clients {
		if !c.enqueue(StreamMessage{Type: "snapshot", Snapshot: &s}) {
			h.remove(c)
			c.close()
			dropped++
		}
	}
	if dropped > 0 {
		return fmt.Errorf("%w: dropped %d", errSlowClient, dropped)
	}
	return nil
}

// Clients is the number of open streams.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams snapshots until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(h.serve).ServeHTTP(w, r)
}

func (h *Hub) serve(conn *websocket.Conn) {
	c := newClient(conn)
	snap := h.record.Snapshot()
	c.enqueue(StreamMessage{Type: "snapshot", Snapshot: &snap})
	go c.writeLoop()

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.remove(c)
		c.close()
	}()
	h.logger.Debug("feed: stream opened")

	for {
		var msg inbound
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debugf("feed: stream closed: %v", err)
			return
		}
		if msg.Type == "ping" && !c.enqueue(StreamMessage{Type: "pong"}) {
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}
