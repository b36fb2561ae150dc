// Package service contains application services.
package service

import (
	"context"
	"fmt"

	"github.com/Strob0t/notestream/internal/domain/note"
	"github.com/Strob0t/notestream/internal/port/database"
)

// NoteService is the host-facing note API. Every mutation notifies the
// registered observers; the store's result is returned unchanged.
type NoteService struct {
	store database.Store
	hooks *Hooks
}

// NewNoteService creates a NoteService over store, notifying hooks.
func NewNoteService(store database.Store, hooks *Hooks) *NoteService {
	return &NoteService{store: store, hooks: hooks}
}

// List returns all notes in store order.
func (s *NoteService) List(ctx context.Context) ([]note.Note, error) {
	return s.store.ListNotes(ctx)
}

// Get returns a single note.
func (s *NoteService) Get(ctx context.Context, id int64) (*note.Note, error) {
	return s.store.GetNote(ctx, id)
}

// Create stores a new note in the given deck, then fires AfterCreate.
func (s *NoteService) Create(ctx context.Context, req note.CreateRequest) (*note.Note, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	n, err := s.store.CreateNote(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.hooks.AfterCreate(ctx, *n, req.DeckID)
	return n, nil
}

// Remove deletes a batch of notes. BeforeRemove fires while the notes can
// still be read, so observers see their last content. It returns how many
// of the ids existed.
func (s *NoteService) Remove(ctx context.Context, req note.RemoveRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	s.hooks.BeforeRemove(ctx, req.IDs)

	removed, err := s.store.DeleteNotes(ctx, req.IDs)
	if err != nil {
		return 0, fmt.Errorf("remove notes: %w", err)
	}

	s.hooks.AfterRemove(ctx, req.IDs)
	return removed, nil
}

// Update replaces a note's fields. BeforeUpdate fires with the stored
// content, AfterUpdate with the new content.
func (s *NoteService) Update(ctx context.Context, id int64, req note.UpdateRequest) (*note.Note, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	old, err := s.store.GetNote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update note %d: %w", id, err)
	}

	s.hooks.BeforeUpdate(ctx, *old)

	n, err := s.store.UpdateNote(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update note %d: %w", id, err)
	}

	s.hooks.AfterUpdate(ctx, *n)
	return n, nil
}
