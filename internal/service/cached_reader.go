package service

import (
	"context"

	"github.com/Strob0t/notestream/internal/domain/note"
	"github.com/Strob0t/notestream/internal/port/database"
	"github.com/Strob0t/notestream/internal/port/hooks"
)

// NoteCache is the cache used by CachedReader.
type NoteCache interface {
	Get(id int64) (note.Note, bool)
	Set(n note.Note)
	Delete(id int64)
}

// CachedReader serves note lookups from a cache before falling back to the
// wrapped reader. It observes mutations to keep the cache current.
type CachedReader struct {
	next  database.Reader
	cache NoteCache
}

var (
	_ database.Reader = (*CachedReader)(nil)
	_ hooks.Observer  = (*CachedReader)(nil)
)

// NewCachedReader wraps next with cache.
func NewCachedReader(next database.Reader, cache NoteCache) *CachedReader {
	return &CachedReader{next: next, cache: cache}
}

// ListNoteIDs always reads through; membership is not cached.
func (r *CachedReader) ListNoteIDs(ctx context.Context) ([]int64, error) {
	return r.next.ListNoteIDs(ctx)
}

func (r *CachedReader) GetNote(ctx context.Context, id int64) (*note.Note, error) {
	if n, ok := r.cache.Get(id); ok {
		return &n, nil
	}
	n, err := r.next.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Set(*n)
	return n, nil
}

func (r *CachedReader) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

// Invalidate drops ids from the cache. It is used for mutations made by
// another process, which never pass through the local hooks.
func (r *CachedReader) Invalidate(ids ...int64) {
	for _, id := range ids {
		r.cache.Delete(id)
	}
}

func (r *CachedReader) AfterCreate(_ context.Context, n note.Note, _ int64) {
	r.cache.Set(n)
}

func (r *CachedReader) BeforeRemove(context.Context, []int64) {}

func (r *CachedReader) AfterRemove(_ context.Context, ids []int64) {
	r.Invalidate(ids...)
}

func (r *CachedReader) BeforeUpdate(context.Context, note.Note) {}

func (r *CachedReader) AfterUpdate(_ context.Context, n note.Note) {
	r.cache.Set(n)
}
