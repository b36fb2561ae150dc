// Package database defines the note store port (interface).
package database

import (
	"context"

	"github.com/Strob0t/notestream/internal/domain/note"
)

// Reader is the read-only data access the streaming core depends on.
// GetNote returns an error wrapping domain.ErrNotFound for unknown ids.
type Reader interface {
	ListNoteIDs(ctx context.Context) ([]int64, error)
	GetNote(ctx context.Context, id int64) (*note.Note, error)
	Ping(ctx context.Context) error
}

// Store is the port interface for note persistence.
type Store interface {
	Reader

	ListNotes(ctx context.Context) ([]note.Note, error)
	CreateNote(ctx context.Context, req note.CreateRequest) (*note.Note, error)
	UpdateNote(ctx context.Context, id int64, req note.UpdateRequest) (*note.Note, error)
	// DeleteNotes removes the given notes and returns how many existed.
	DeleteNotes(ctx context.Context, ids []int64) (int64, error)
}
