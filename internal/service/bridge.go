package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Strob0t/notestream/internal/domain"
	"github.com/Strob0t/notestream/internal/domain/event"
	"github.com/Strob0t/notestream/internal/domain/note"
	"github.com/Strob0t/notestream/internal/port/broadcast"
	"github.com/Strob0t/notestream/internal/port/database"
	"github.com/Strob0t/notestream/internal/port/hooks"
)

// MutationBridge turns note mutations into broadcast events. Registered as
// an observer it reads notes about to be removed from the store; the Publish methods
// serve callers that already hold the notes.
type MutationBridge struct {
	reader      database.Reader
	broadcaster broadcast.Broadcaster
}

var _ hooks.Observer = (*MutationBridge)(nil)

// NewMutationBridge creates a MutationBridge. reader resolves the display
// text of notes about to be removed.
func NewMutationBridge(reader database.Reader, broadcaster broadcast.Broadcaster) *MutationBridge {
	return &MutationBridge{reader: reader, broadcaster: broadcaster}
}

// AfterCreate broadcasts one add event.
func (b *MutationBridge) AfterCreate(ctx context.Context, n note.Note, _ int64) {
	b.broadcaster.Broadcast(ctx, event.Add(n.ID, n.FirstField()))
}

// BeforeRemove broadcasts a remove event per id, looking each note up
// while it still exists. Unresolvable ids are skipped.
func (b *MutationBridge) BeforeRemove(ctx context.Context, ids []int64) {
	for _, id := range ids {
		b.broadcastRemove(ctx, id)
	}
}

// AfterRemove is a no-op; remove events go out before the delete.
func (b *MutationBridge) AfterRemove(context.Context, []int64) {}

// BeforeUpdate broadcasts the remove half of an update with the text the
// note had before the change. It never consults the reader, so the add half
// is always preceded by its remove.
func (b *MutationBridge) BeforeUpdate(ctx context.Context, old note.Note) {
	b.broadcaster.Broadcast(ctx, event.Remove(old.ID, old.FirstField()))
}

// AfterUpdate broadcasts the add half of an update with the new content.
func (b *MutationBridge) AfterUpdate(ctx context.Context, n note.Note) {
	b.broadcaster.Broadcast(ctx, event.Add(n.ID, n.FirstField()))
}

// PublishCreated broadcasts an add event for a note created elsewhere.
func (b *MutationBridge) PublishCreated(ctx context.Context, n note.Note) {
	b.broadcaster.Broadcast(ctx, event.Add(n.ID, n.FirstField()))
}

// PublishRemoved broadcasts remove events for notes deleted elsewhere,
// using the content carried by the caller.
func (b *MutationBridge) PublishRemoved(ctx context.Context, notes []note.Note) {
	for _, n := range notes {
		b.broadcaster.Broadcast(ctx, event.Remove(n.ID, n.FirstField()))
	}
}

// PublishUpdated broadcasts remove(old) then add(new).
func (b *MutationBridge) PublishUpdated(ctx context.Context, old, n note.Note) {
	b.broadcaster.Broadcast(ctx, event.Remove(old.ID, old.FirstField()))
	b.broadcaster.Broadcast(ctx, event.Add(n.ID, n.FirstField()))
}

func (b *MutationBridge) broadcastRemove(ctx context.Context, id int64) {
	n, err := b.reader.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Debug("remove event skipped, note not found", "note_id", id)
		} else {
			slog.Warn("remove event skipped, lookup failed", "note_id", id, "error", err)
		}
		return
	}
	b.broadcaster.Broadcast(ctx, event.Remove(id, n.FirstField()))
}
