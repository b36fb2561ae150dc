package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Strob0t/notestream/internal/domain"
	"github.com/Strob0t/notestream/internal/domain/note"
	"github.com/Strob0t/notestream/internal/resilience"
)

func TestGuardedReaderNotFoundDoesNotTrip(t *testing.T) {
	br := resilience.NewBreaker("test", 2, time.Minute)
	gr := NewGuardedReader(newStubReader(), br)

	for range 5 {
		if _, err := gr.GetNote(context.Background(), 1); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if br.State() != resilience.Closed {
		t.Errorf("breaker state = %s, want closed", br.State())
	}
}

func TestGuardedReaderOpensOnStoreFailures(t *testing.T) {
	r := newStubReader(mkNote(1, "a"))
	r.getErr[1] = errStoreDown
	br := resilience.NewBreaker("test", 2, time.Minute)
	gr := NewGuardedReader(r, br)
	ctx := context.Background()

	for range 2 {
		if _, err := gr.GetNote(ctx, 1); !errors.Is(err, errStoreDown) {
			t.Fatalf("expected errStoreDown, got %v", err)
		}
	}

	if _, err := gr.GetNote(ctx, 1); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if _, err := gr.ListNoteIDs(ctx); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen from ListNoteIDs, got %v", err)
	}
	if got := r.Gets(); got != 2 {
		t.Errorf("store lookups = %d, want 2", got)
	}
}

func TestGuardedReaderPassesThrough(t *testing.T) {
	gr := NewGuardedReader(newStubReader(mkNote(4, "x")), resilience.NewBreaker("test", 1, time.Minute))

	ids, err := gr.ListNoteIDs(context.Background())
	if err != nil || len(ids) != 1 || ids[0] != 4 {
		t.Fatalf("ListNoteIDs = %v, %v", ids, err)
	}
	n, err := gr.GetNote(context.Background(), 4)
	if err != nil || n.FirstField() != "x" {
		t.Fatalf("GetNote = %+v, %v", n, err)
	}
}

func TestGuardedReaderCanceledSnapshotDoesNotTrip(t *testing.T) {
	br := resilience.NewBreaker("test", 1, time.Minute)
	gr := NewGuardedReader(cancelingReader{}, br)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := gr.ListNoteIDs(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := gr.GetNote(context.Background(), 1); errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatal("a subscriber leaving mid-snapshot opened the breaker")
	}
}

// cancelingReader fails like a store call interrupted by its context.
type cancelingReader struct{}

func (cancelingReader) ListNoteIDs(ctx context.Context) ([]int64, error) { return nil, ctx.Err() }
func (cancelingReader) Ping(context.Context) error                       { return nil }

func (cancelingReader) GetNote(context.Context, int64) (*note.Note, error) {
	return nil, domain.ErrNotFound
}
