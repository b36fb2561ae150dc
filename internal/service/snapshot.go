package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Strob0t/notestream/internal/domain"
	"github.com/Strob0t/notestream/internal/domain/event"
	"github.com/Strob0t/notestream/internal/port/database"
)

// SnapshotService builds the initial add events for a new subscriber.
type SnapshotService struct {
	reader database.Reader
}

// NewSnapshotService creates a SnapshotService over reader.
func NewSnapshotService(reader database.Reader) *SnapshotService {
	return &SnapshotService{reader: reader}
}

// Snapshot emits one add event per note, in store order. A note that can
// no longer be read (removed after the id listing, or a failed lookup) is
// skipped; only a failure to list ids or an emit error aborts.
func (s *SnapshotService) Snapshot(ctx context.Context, emit func(event.Event) error) error {
	ids, err := s.reader.ListNoteIDs(ctx)
	if err != nil {
		return fmt.Errorf("list note ids: %w", err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := s.reader.GetNote(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				slog.Debug("snapshot note vanished", "note_id", id)
			} else {
				slog.Warn("snapshot note lookup failed", "note_id", id, "error", err)
			}
			continue
		}

		if err := emit(event.Add(id, n.FirstField())); err != nil {
			return err
		}
	}
	return nil
}
