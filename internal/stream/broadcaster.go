package stream

import (
	"context"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	nsotel "github.com/Strob0t/notestream/internal/adapter/otel"
	"github.com/Strob0t/notestream/internal/domain/event"
	"github.com/Strob0t/notestream/internal/port/broadcast"
)

// Broadcaster encodes each event once and writes it to every registered
// connection, evicting connections whose write fails.
type Broadcaster struct {
	registry *Registry
	workers  int
	metrics  *nsotel.Metrics
}

var _ broadcast.Broadcaster = (*Broadcaster)(nil)

// NewBroadcaster creates a Broadcaster over registry. workers bounds the
// number of subscribers written to in parallel; values below 1 mean 1.
func NewBroadcaster(registry *Registry, workers int, metrics *nsotel.Metrics) *Broadcaster {
	if workers < 1 {
		workers = 1
	}
	return &Broadcaster{registry: registry, workers: workers, metrics: metrics}
}

// Broadcast delivers ev to every subscriber registered when the call starts.
// It returns once every write has finished or hit its deadline, so events
// broadcast one after another reach each subscriber in that order. A failed
// write evicts that subscriber only.
func (b *Broadcaster) Broadcast(ctx context.Context, ev event.Event) {
	ctx, span := nsotel.StartBroadcastSpan(ctx, ev.Kind.String(), ev.NoteID)
	defer span.End()

	frame, err := Encode(ev)
	if err != nil {
		slog.Error("event encode failed", "note_id", ev.NoteID, "kind", ev.Kind.String(), "error", err)
		span.RecordError(err)
		if b.metrics != nil {
			b.metrics.EncodeFailures.Add(ctx, 1)
		}
		return
	}

	var delivered, evicted atomic.Int64

	var g errgroup.Group
	g.SetLimit(b.workers)
	b.registry.ForEach(func(c *Conn) {
		g.Go(func() error {
			if err := c.Send(ctx, frame); err != nil {
				slog.Debug("subscriber write failed", "conn_id", c.ID(), "error", err)
				b.registry.Remove(c)
				evicted.Add(1)
				return nil
			}
			delivered.Add(1)
			return nil
		})
	})
	_ = g.Wait()

	if b.metrics != nil {
		kind := metric.WithAttributes(attribute.String("kind", ev.Kind.String()))
		b.metrics.EventsBroadcast.Add(ctx, 1, kind)
		b.metrics.Deliveries.Add(ctx, delivered.Load())
		b.metrics.Evictions.Add(ctx, evicted.Load())
	}
	span.SetAttributes(
		attribute.Int64("deliveries", delivered.Load()),
		attribute.Int64("evictions", evicted.Load()),
	)
	slog.Debug("event broadcast",
		"kind", ev.Kind.String(),
		"note_id", ev.NoteID,
		"delivered", delivered.Load(),
		"evicted", evicted.Load(),
	)
}
