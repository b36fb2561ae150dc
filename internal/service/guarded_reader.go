package service

import (
	"context"
	"errors"

	"github.com/Strob0t/notestream/internal/domain"
	"github.com/Strob0t/notestream/internal/domain/note"
	"github.com/Strob0t/notestream/internal/port/database"
	"github.com/Strob0t/notestream/internal/resilience"
)

// GuardedReader routes store reads through a circuit breaker so a failing
// store is not hammered once per subscriber. ErrNotFound is a normal answer
// and does not count as a failure.
type GuardedReader struct {
	next    database.Reader
	breaker *resilience.Breaker
}

var _ database.Reader = (*GuardedReader)(nil)

// NewGuardedReader wraps next with breaker.
func NewGuardedReader(next database.Reader, breaker *resilience.Breaker) *GuardedReader {
	return &GuardedReader{next: next, breaker: breaker}
}

func (r *GuardedReader) ListNoteIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		ids, err = r.next.ListNoteIDs(ctx)
		return err
	})
	return ids, err
}

func (r *GuardedReader) GetNote(ctx context.Context, id int64) (*note.Note, error) {
	var n *note.Note
	err := r.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		n, err = r.next.GetNote(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return resilience.Pass(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Ping bypasses the breaker so health checks report the real store state.
func (r *GuardedReader) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}
