package stream

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	nsotel "github.com/Strob0t/notestream/internal/adapter/otel"
)

// ErrRegistryClosed is returned by Add once CloseAll has begun.
var ErrRegistryClosed = errors.New("registry closed")

// Registry is the set of live subscriber connections, keyed by identity.
// The lock guards membership only; it is never held across I/O.
type Registry struct {
	mu      sync.Mutex
	conns   map[*Conn]struct{}
	closed  bool
	metrics *nsotel.Metrics
}

// NewRegistry creates an empty registry. metrics may be nil.
func NewRegistry(metrics *nsotel.Metrics) *Registry {
	return &Registry{
		conns:   make(map[*Conn]struct{}),
		metrics: metrics,
	}
}

// Add registers a connection. The caller guarantees each connection is added once.
func (r *Registry) Add(c *Conn) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRegistryClosed
	}
	r.conns[c] = struct{}{}
	total := len(r.conns)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.Subscribers.Add(context.Background(), 1)
	}
	slog.Info("subscriber registered",
		"conn_id", c.ID(),
		"transport", c.Transport(),
		"remote", c.Remote(),
		"total", total,
	)
	return nil
}

// Remove deregisters a connection and closes it. Removing a connection that
// is not registered only makes sure it is closed.
func (r *Registry) Remove(c *Conn) {
	r.mu.Lock()
	_, ok := r.conns[c]
	delete(r.conns, c)
	total := len(r.conns)
	r.mu.Unlock()

	c.Close()

	if !ok {
		return
	}
	if r.metrics != nil {
		r.metrics.Subscribers.Add(context.Background(), -1)
	}
	slog.Info("subscriber removed", "conn_id", c.ID(), "total", total)
}

// ForEach calls fn for every connection registered at the moment of the
// call. Membership is copied under the lock and iterated without it, so fn
// may call Remove.
func (r *Registry) ForEach(fn func(c *Conn)) {
	for _, c := range r.snapshot() {
		fn(c)
	}
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// CloseAll drops every connection and refuses further adds.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	r.closed = true
	conns := make([]*Conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	clear(r.conns)
	r.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	if r.metrics != nil && len(conns) > 0 {
		r.metrics.Subscribers.Add(context.Background(), -int64(len(conns)))
	}
	slog.Info("all subscribers closed", "count", len(conns))
}

func (r *Registry) snapshot() []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := make([]*Conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}
