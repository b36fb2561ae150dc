package service

import (
	"context"
	"testing"

	"github.com/Strob0t/notestream/internal/domain/note"
)

// mapCache is a synchronous NoteCache.
type mapCache map[int64]note.Note

func (m mapCache) Get(id int64) (note.Note, bool) {
	n, ok := m[id]
	return n, ok
}

func (m mapCache) Set(n note.Note) { m[n.ID] = n }
func (m mapCache) Delete(id int64) { delete(m, id) }

func TestCachedReaderServesFromCache(t *testing.T) {
	r := newStubReader(mkNote(1, "Hello"))
	cr := NewCachedReader(r, mapCache{})
	ctx := context.Background()

	for range 3 {
		n, err := cr.GetNote(ctx, 1)
		if err != nil {
			t.Fatalf("GetNote: %v", err)
		}
		if n.FirstField() != "Hello" {
			t.Errorf("FirstField = %q", n.FirstField())
		}
	}
	if got := r.Gets(); got != 1 {
		t.Errorf("store lookups = %d, want 1", got)
	}
}

func TestCachedReaderDoesNotCacheMisses(t *testing.T) {
	r := newStubReader()
	cr := NewCachedReader(r, mapCache{})

	_, _ = cr.GetNote(context.Background(), 1)
	_, _ = cr.GetNote(context.Background(), 1)
	if got := r.Gets(); got != 2 {
		t.Errorf("store lookups = %d, want 2", got)
	}
}

func TestCachedReaderObservesMutations(t *testing.T) {
	cache := mapCache{}
	cr := NewCachedReader(newStubReader(), cache)
	ctx := context.Background()

	cr.AfterCreate(ctx, mkNote(1, "Hello"), 0)
	if n, ok := cache[1]; !ok || n.FirstField() != "Hello" {
		t.Fatalf("create not cached: %+v", cache)
	}

	cr.BeforeUpdate(ctx, mkNote(1, "Hello"))
	if cache[1].FirstField() != "Hello" {
		t.Error("BeforeUpdate must leave the old content cached")
	}
	cr.AfterUpdate(ctx, mkNote(1, "Hallo"))
	if cache[1].FirstField() != "Hallo" {
		t.Errorf("update not cached: %+v", cache[1])
	}

	cr.BeforeRemove(ctx, []int64{1})
	if _, ok := cache[1]; !ok {
		t.Error("BeforeRemove must keep the note readable")
	}
	cr.AfterRemove(ctx, []int64{1})
	if _, ok := cache[1]; ok {
		t.Error("AfterRemove must evict the note")
	}
}

func TestCachedReaderWithBridgeOnUpdate(t *testing.T) {
	store := newStubReader()
	cache := mapCache{}
	cr := NewCachedReader(store, cache)
	rec := &recordingBroadcaster{}
	h := NewHooks()
	h.Register(cr)
	h.Register(NewMutationBridge(cr, rec))

	ctx := context.Background()
	h.AfterCreate(ctx, mkNote(1, "Hello"), 0)
	h.BeforeUpdate(ctx, mkNote(1, "Hello"))
	h.AfterUpdate(ctx, mkNote(1, "Hallo"))

	events := rec.Events()
	if len(events) != 3 || events[1].Text != "Hello" || events[2].Text != "Hallo" {
		t.Errorf("events = %+v", events)
	}
}
