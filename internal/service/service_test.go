package service

import (
	"context"
	"errors"
	"sync"

	"github.com/Strob0t/notestream/internal/domain"
	"github.com/Strob0t/notestream/internal/domain/event"
	"github.com/Strob0t/notestream/internal/domain/note"
)

// recordingBroadcaster captures broadcast events in order.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recordingBroadcaster) Broadcast(_ context.Context, ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingBroadcaster) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Event, len(r.events))
	copy(out, r.events)
	return out
}

// stubReader is a database.Reader over a fixed note map.
type stubReader struct {
	mu      sync.Mutex
	ids     []int64
	notes   map[int64]note.Note
	listErr error
	getErr  map[int64]error
	gets    int
}

func newStubReader(notes ...note.Note) *stubReader {
	r := &stubReader{notes: make(map[int64]note.Note), getErr: make(map[int64]error)}
	for _, n := range notes {
		r.ids = append(r.ids, n.ID)
		r.notes[n.ID] = n
	}
	return r
}

func (r *stubReader) ListNoteIDs(context.Context) ([]int64, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.ids, nil
}

func (r *stubReader) GetNote(_ context.Context, id int64) (*note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if err := r.getErr[id]; err != nil {
		return nil, err
	}
	n, ok := r.notes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &n, nil
}

func (r *stubReader) Ping(context.Context) error { return nil }

func (r *stubReader) Gets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}

var errStoreDown = errors.New("store down")

func mkNote(id int64, fields ...string) note.Note {
	return note.Note{ID: id, Fields: fields}
}
