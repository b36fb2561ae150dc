// Package hooks defines the observer port through which the note store
// announces mutations.
package hooks

import (
	"context"

	"github.com/Strob0t/notestream/internal/domain/note"
)

// Observer receives note mutation callbacks. Callbacks run synchronously on
// the goroutine performing the mutation, in the order listed for each
// operation:
//
//	create: write, AfterCreate
//	remove: BeforeRemove (notes still resolvable), delete, AfterRemove
//	update: BeforeUpdate (old content still stored), write, AfterUpdate
//
// Observers cannot fail a mutation; they have no error return.
type Observer interface {
	AfterCreate(ctx context.Context, n note.Note, deckID int64)
	BeforeRemove(ctx context.Context, ids []int64)
	AfterRemove(ctx context.Context, ids []int64)
	BeforeUpdate(ctx context.Context, old note.Note)
	AfterUpdate(ctx context.Context, n note.Note)
}
