// Package messagequeue defines the message queue port (interface).
package messagequeue

import (
	"context"
	"errors"
)

// Handler processes a message received from the queue.
type Handler func(ctx context.Context, subject string, data []byte) error

// Queue is the consumer side of the mutation feed. notestream never
// publishes: mutations made through its own API reach subscribers through
// the local hooks, and republishing them would broadcast them twice.
type Queue interface {
	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Close shuts down the queue connection.
	Close() error

	// IsConnected reports whether the queue is currently connected.
	IsConnected() bool
}

// ErrMalformed marks a message that can never be processed. Adapters drop
// such messages instead of redelivering them.
var ErrMalformed = errors.New("malformed message")

// Subjects on which an external host announces note mutations.
const (
	SubjectNoteCreated = "notes.created"
	SubjectNoteRemoved = "notes.removed"
	SubjectNoteUpdated = "notes.updated"

	// SubjectNotesAll matches every note mutation subject.
	SubjectNotesAll = "notes.>"
)
