package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	nsotel "github.com/Strob0t/notestream/internal/adapter/otel"
	"github.com/Strob0t/notestream/internal/domain/event"
)

// Snapshotter enumerates the current notes for a new subscriber, calling
// emit once per note in store order. An error from emit aborts the snapshot.
type Snapshotter interface {
	Snapshot(ctx context.Context, emit func(event.Event) error) error
}

// Options configures a Hub.
type Options struct {
	WriteTimeout      time.Duration
	HeartbeatInterval time.Duration // 0 disables keep-alives
	MaxOnboarding     int64
	FanoutWorkers     int
}

// Hub ties the registry, the broadcaster and subscriber onboarding together.
// Transports hand each accepted connection to Serve.
type Hub struct {
	registry    *Registry
	broadcaster *Broadcaster
	snapshots   Snapshotter
	onboarding  *semaphore.Weighted
	opts        Options
	metrics     *nsotel.Metrics
}

// NewHub creates a Hub with an empty registry. metrics may be nil.
func NewHub(snapshots Snapshotter, opts Options, metrics *nsotel.Metrics) *Hub {
	if opts.MaxOnboarding < 1 {
		opts.MaxOnboarding = 1
	}
	registry := NewRegistry(metrics)
	return &Hub{
		registry:    registry,
		broadcaster: NewBroadcaster(registry, opts.FanoutWorkers, metrics),
		snapshots:   snapshots,
		onboarding:  semaphore.NewWeighted(opts.MaxOnboarding),
		opts:        opts,
		metrics:     metrics,
	}
}

// Broadcast delivers ev to every registered subscriber.
func (h *Hub) Broadcast(ctx context.Context, ev event.Event) {
	h.broadcaster.Broadcast(ctx, ev)
}

// ConnectionCount returns the number of registered subscribers.
func (h *Hub) ConnectionCount() int {
	return h.registry.Len()
}

// Close drops every subscriber. No frame is written after Close returns.
func (h *Hub) Close() {
	h.registry.CloseAll()
}

// Serve onboards a subscriber whose handshake has been written, then blocks
// until the connection ends: ctx is canceled (client went away), the
// connection is evicted or the hub is closed. It returns nil on a normal
// end and an error when onboarding failed.
func (h *Hub) Serve(ctx context.Context, t Transport, remote string) error {
	c := NewConn(uuid.NewString(), remote, t, h.opts.WriteTimeout)

	if err := h.onboard(ctx, c); err != nil {
		c.Close()
		return err
	}

	var tick <-chan time.Time
	if h.opts.HeartbeatInterval > 0 {
		ticker := time.NewTicker(h.opts.HeartbeatInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			slog.Debug("subscriber disconnected", "conn_id", c.ID(), "reason", ctx.Err())
			h.registry.Remove(c)
			return nil
		case <-c.Done():
			return nil
		case <-tick:
			if err := c.Ping(ctx); err != nil {
				slog.Debug("subscriber keep-alive failed", "conn_id", c.ID(), "error", err)
				h.registry.Remove(c)
				return nil
			}
		}
	}
}

// onboard registers c as pending, streams the snapshot, then flushes any
// broadcasts that arrived meanwhile and makes c live. On failure c is
// deregistered.
func (h *Hub) onboard(ctx context.Context, c *Conn) error {
	if err := h.onboarding.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for onboarding slot: %w", err)
	}
	defer h.onboarding.Release(1)

	if err := h.registry.Add(c); err != nil {
		return fmt.Errorf("register %s: %w", c.ID(), err)
	}

	ctx, span := nsotel.StartSnapshotSpan(ctx, c.ID(), c.Transport())
	defer span.End()

	start := time.Now()
	sent := 0
	err := h.snapshots.Snapshot(ctx, func(ev event.Event) error {
		frame, err := Encode(ev)
		if err != nil {
			slog.Warn("snapshot note skipped", "conn_id", c.ID(), "note_id", ev.NoteID, "error", err)
			return nil
		}
		if err := c.SendNow(ctx, frame); err != nil {
			return err
		}
		sent++
		return nil
	})
	if err == nil {
		err = c.Activate(ctx)
	}
	if err != nil {
		span.RecordError(err)
		h.registry.Remove(c)
		return fmt.Errorf("snapshot %s after %d notes: %w", c.ID(), sent, err)
	}

	if h.metrics != nil {
		h.metrics.SnapshotNotes.Add(ctx, int64(sent))
		h.metrics.SnapshotDuration.Record(ctx, time.Since(start).Seconds())
	}
	slog.Info("snapshot sent",
		"conn_id", c.ID(),
		"notes", sent,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
