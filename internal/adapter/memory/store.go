// Package memory implements the note store port in process memory.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Strob0t/notestream/internal/domain"
	"github.com/Strob0t/notestream/internal/domain/note"
	"github.com/Strob0t/notestream/internal/port/database"
)

// Store keeps notes in a map. Ids are assigned sequentially from 1 and
// listed in ascending order.
type Store struct {
	mu     sync.RWMutex
	notes  map[int64]note.Note
	nextID int64
	now    func() time.Time
}

var _ database.Store = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		notes:  make(map[int64]note.Note),
		nextID: 1,
		now:    time.Now,
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) ListNoteIDs(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedIDs(), nil
}

func (s *Store) ListNotes(ctx context.Context) ([]note.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sortedIDs()
	out := make([]note.Note, 0, len(ids))
	for _, id := range ids {
		out = append(out, clone(s.notes[id]))
	}
	return out, nil
}

func (s *Store) GetNote(ctx context.Context, id int64) (*note.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, fmt.Errorf("get note %d: %w", id, domain.ErrNotFound)
	}
	n = clone(n)
	return &n, nil
}

func (s *Store) CreateNote(ctx context.Context, req note.CreateRequest) (*note.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	n := note.Note{
		ID:        s.nextID,
		DeckID:    req.DeckID,
		Fields:    slices.Clone(req.Fields),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextID++
	s.notes[n.ID] = n

	n = clone(n)
	return &n, nil
}

func (s *Store) UpdateNote(ctx context.Context, id int64, req note.UpdateRequest) (*note.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, fmt.Errorf("update note %d: %w", id, domain.ErrNotFound)
	}
	n.Fields = slices.Clone(req.Fields)
	n.UpdatedAt = s.now().UTC()
	s.notes[id] = n

	n = clone(n)
	return &n, nil
}

func (s *Store) DeleteNotes(ctx context.Context, ids []int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for _, id := range ids {
		if _, ok := s.notes[id]; ok {
			delete(s.notes, id)
			removed++
		}
	}
	return removed, nil
}

// sortedIDs must be called with s.mu held.
func (s *Store) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.notes))
	for id := range s.notes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func clone(n note.Note) note.Note {
	n.Fields = slices.Clone(n.Fields)
	return n
}
