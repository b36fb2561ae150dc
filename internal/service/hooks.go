package service

import (
	"context"
	"sync"

	"github.com/Strob0t/notestream/internal/domain/note"
	"github.com/Strob0t/notestream/internal/port/hooks"
)

// Hooks is the registration point for mutation observers. It fans every
// callback out to the registered observers in registration order.
type Hooks struct {
	mu        sync.RWMutex
	observers []*hookEntry
}

type hookEntry struct {
	observer hooks.Observer
}

var _ hooks.Observer = (*Hooks)(nil)

// NewHooks creates an empty hook registry.
func NewHooks() *Hooks {
	return &Hooks{}
}

// Register adds an observer. The returned function removes it again and is
// safe to call more than once.
func (h *Hooks) Register(o hooks.Observer) (unregister func()) {
	e := &hookEntry{observer: o}

	h.mu.Lock()
	h.observers = append(h.observers, e)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, cur := range h.observers {
				if cur == e {
					h.observers = append(h.observers[:i:i], h.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Len returns the number of registered observers.
func (h *Hooks) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

func (h *Hooks) each(fn func(hooks.Observer)) {
	h.mu.RLock()
	entries := make([]*hookEntry, len(h.observers))
	copy(entries, h.observers)
	h.mu.RUnlock()

	for _, e := range entries {
		fn(e.observer)
	}
}

func (h *Hooks) AfterCreate(ctx context.Context, n note.Note, deckID int64) {
	h.each(func(o hooks.Observer) { o.AfterCreate(ctx, n, deckID) })
}

func (h *Hooks) BeforeRemove(ctx context.Context, ids []int64) {
	h.each(func(o hooks.Observer) { o.BeforeRemove(ctx, ids) })
}

func (h *Hooks) AfterRemove(ctx context.Context, ids []int64) {
	h.each(func(o hooks.Observer) { o.AfterRemove(ctx, ids) })
}

func (h *Hooks) BeforeUpdate(ctx context.Context, old note.Note) {
	h.each(func(o hooks.Observer) { o.BeforeUpdate(ctx, old) })
}

func (h *Hooks) AfterUpdate(ctx context.Context, n note.Note) {
	h.each(func(o hooks.Observer) { o.AfterUpdate(ctx, n) })
}
