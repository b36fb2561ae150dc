package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// maxPending bounds the frames queued for a subscriber that is still
// receiving its snapshot.
const maxPending = 4096

var (
	// ErrConnClosed is returned when writing to a connection that was closed.
	ErrConnClosed = errors.New("connection closed")
	// ErrPendingOverflow is returned when a subscriber's snapshot takes so long
	// that its queue of live events fills up.
	ErrPendingOverflow = errors.New("pending queue overflow")
)

// Transport is the write side of one subscriber connection.
// Implementations are not required to be safe for concurrent use; Conn
// serializes every call.
type Transport interface {
	// Name identifies the transport in logs and metrics ("sse", "ws").
	Name() string
	// WriteFrame writes one frame. It must honor ctx's deadline.
	WriteFrame(ctx context.Context, f Frame) error
	// Ping writes a keep-alive that carries no event.
	Ping(ctx context.Context) error
	// Close releases the network resource.
	Close()
}

// Conn is a registered subscriber. It starts pending: live frames are
// queued until Activate flushes them after the snapshot. Closed is terminal.
type Conn struct {
	id           string
	remote       string
	transport    Transport
	writeTimeout time.Duration

	mu      sync.Mutex
	live    bool
	closed  bool
	pending []Frame

	done chan struct{}
}

// NewConn wraps a transport. writeTimeout bounds every individual write.
func NewConn(id, remote string, t Transport, writeTimeout time.Duration) *Conn {
	return &Conn{
		id:           id,
		remote:       remote,
		transport:    t,
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() string { return c.id }

// Remote returns the peer address.
func (c *Conn) Remote() string { return c.remote }

// Transport returns the transport name.
func (c *Conn) Transport() string { return c.transport.Name() }

// Done is closed once the connection has been closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Send delivers a broadcast frame. While the connection is pending the frame
// is queued instead.
func (c *Conn) Send(ctx context.Context, f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	if !c.live {
		if len(c.pending) >= maxPending {
			return ErrPendingOverflow
		}
		c.pending = append(c.pending, f)
		return nil
	}
	return c.write(ctx, f)
}

// SendNow writes a frame immediately, bypassing the pending queue. It is
// used for snapshot frames, which must precede every queued broadcast.
func (c *Conn) SendNow(ctx context.Context, f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	return c.write(ctx, f)
}

// Activate flushes queued frames in arrival order and switches the
// connection to direct delivery.
func (c *Conn) Activate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	for i, f := range c.pending {
		if err := c.write(ctx, f); err != nil {
			return fmt.Errorf("flush pending frame %d: %w", i, err)
		}
	}
	c.pending = nil
	c.live = true
	return nil
}

// Ping writes a keep-alive.
func (c *Conn) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	ctx, cancel := c.writeContext(ctx)
	defer cancel()
	return c.transport.Ping(ctx)
}

// Close marks the connection closed and releases the transport. Once Close
// returns no write is in progress and none will start. Safe to call more
// than once.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.pending = nil
	c.mu.Unlock()

	c.transport.Close()
	close(c.done)
}

// write must be called with c.mu held.
func (c *Conn) write(ctx context.Context, f Frame) error {
	ctx, cancel := c.writeContext(ctx)
	defer cancel()
	return c.transport.WriteFrame(ctx, f)
}

// writeContext detaches the write from the caller's cancellation (a
// finished HTTP request must not abort delivery to other subscribers) and
// bounds it by the write timeout.
func (c *Conn) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), c.writeTimeout)
}
