package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	nsotel "github.com/Strob0t/notestream/internal/adapter/otel"
	"github.com/Strob0t/notestream/internal/domain/note"
	"github.com/Strob0t/notestream/internal/port/messagequeue"
)

// Relay forwards note mutations announced on the message queue by another
// process to the local subscribers.
type Relay struct {
	queue   messagequeue.Queue
	bridge  *MutationBridge
	metrics *nsotel.Metrics
	inv     Invalidator
}

// Invalidator drops cached copies of notes changed elsewhere.
type Invalidator interface {
	Invalidate(ids ...int64)
}

// NewRelay creates a Relay. metrics may be nil.
func NewRelay(queue messagequeue.Queue, bridge *MutationBridge, metrics *nsotel.Metrics) *Relay {
	return &Relay{queue: queue, bridge: bridge, metrics: metrics}
}

// WithInvalidator makes the relay evict relayed notes from inv before
// broadcasting them.
func (r *Relay) WithInvalidator(inv Invalidator) *Relay {
	r.inv = inv
	return r
}

// Start subscribes to all note mutation subjects. The returned function
// stops every subscription.
func (r *Relay) Start(ctx context.Context) (stop func(), err error) {
	subjects := []string{
		messagequeue.SubjectNoteCreated,
		messagequeue.SubjectNoteRemoved,
		messagequeue.SubjectNoteUpdated,
	}

	var cancels []func()
	stop = func() {
		for _, c := range cancels {
			c()
		}
	}

	for _, subj := range subjects {
		cancel, err := r.queue.Subscribe(ctx, subj, r.Handle)
		if err != nil {
			stop()
			return nil, fmt.Errorf("relay subscribe %s: %w", subj, err)
		}
		cancels = append(cancels, cancel)
	}

	slog.Info("relay started", "subjects", subjects)
	return stop, nil
}

// Handle processes one queue message.
func (r *Relay) Handle(ctx context.Context, subject string, data []byte) error {
	ctx, span := nsotel.StartRelaySpan(ctx, subject)
	defer span.End()

	if r.metrics != nil {
		r.metrics.RelayMessages.Add(ctx, 1, metric.WithAttributes(attribute.String("subject", subject)))
	}

	if err := messagequeue.Validate(subject, data); err != nil {
		return fmt.Errorf("%w: %w", messagequeue.ErrMalformed, err)
	}

	switch subject {
	case messagequeue.SubjectNoteCreated:
		var p messagequeue.NoteCreatedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("%w: %w", messagequeue.ErrMalformed, err)
		}
		r.invalidate(p.Note.ID)
		r.bridge.PublishCreated(ctx, fromPayload(p.Note))

	case messagequeue.SubjectNoteRemoved:
		var p messagequeue.NoteRemovedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("%w: %w", messagequeue.ErrMalformed, err)
		}
		notes := make([]note.Note, len(p.Notes))
		ids := make([]int64, len(p.Notes))
		for i, n := range p.Notes {
			notes[i] = fromPayload(n)
			ids[i] = n.ID
		}
		r.invalidate(ids...)
		r.bridge.PublishRemoved(ctx, notes)

	case messagequeue.SubjectNoteUpdated:
		var p messagequeue.NoteUpdatedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("%w: %w", messagequeue.ErrMalformed, err)
		}
		r.invalidate(p.Old.ID, p.New.ID)
		r.bridge.PublishUpdated(ctx, fromPayload(p.Old), fromPayload(p.New))

	default:
		return fmt.Errorf("%w: unexpected subject %s", messagequeue.ErrMalformed, subject)
	}
	return nil
}

func (r *Relay) invalidate(ids ...int64) {
	if r.inv != nil {
		r.inv.Invalidate(ids...)
	}
}

func fromPayload(p messagequeue.NotePayload) note.Note {
	return note.Note{ID: p.ID, Fields: p.Fields}
}
