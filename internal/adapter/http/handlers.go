package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/notestream/internal/domain/note"
	"github.com/Strob0t/notestream/internal/port/messagequeue"
	"github.com/Strob0t/notestream/internal/resilience"
	"github.com/Strob0t/notestream/internal/service"
)

// bodyLimit caps request bodies on the notes API.
const bodyLimit = 1 << 20

// SubscriberCounter reports the number of live stream subscribers.
type SubscriberCounter interface {
	ConnectionCount() int
}

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BreakerState reports a circuit breaker's state.
type BreakerState interface {
	State() resilience.State
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Notes       *service.NoteService
	Subscribers SubscriberCounter
	Store       Pinger
	Breaker     BreakerState        // nil when lookups are unguarded
	Queue       messagequeue.Queue // nil when the relay is disabled
}

type healthResponse struct {
	Status      string `json:"status"`
	Subscribers int    `json:"subscribers"`
	Store       string `json:"store"`
	Breaker     string `json:"breaker,omitempty"`
	NATS        string `json:"nats"`
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		Subscribers: h.Subscribers.ConnectionCount(),
		Store:       "up",
		NATS:        "disabled",
	}
	status := http.StatusOK

	if err := h.Store.Ping(r.Context()); err != nil {
		resp.Store = "down"
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	if h.Breaker != nil {
		resp.Breaker = h.Breaker.State().String()
	}
	if h.Queue != nil {
		resp.NATS = "connected"
		if !h.Queue.IsConnected() {
			resp.NATS = "disconnected"
			resp.Status = "degraded"
		}
	}

	writeJSON(w, status, resp)
}

// ListNotes handles GET /api/v1/notes
func (h *Handlers) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Notes.List(r.Context())
	if err != nil {
		writeNoteError(w, err)
		return
	}
	if notes == nil {
		notes = []note.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// GetNote handles GET /api/v1/notes/{id}
func (h *Handlers) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	n, err := h.Notes.Get(r.Context(), id)
	if err != nil {
		writeNoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CreateNote handles POST /api/v1/notes
func (h *Handlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[note.CreateRequest](w, r)
	if !ok {
		return
	}
	n, err := h.Notes.Create(r.Context(), req)
	if err != nil {
		writeNoteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// UpdateNote handles PUT /api/v1/notes/{id}
func (h *Handlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[note.UpdateRequest](w, r)
	if !ok {
		return
	}
	n, err := h.Notes.Update(r.Context(), id, req)
	if err != nil {
		writeNoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

type removeResponse struct {
	Removed int64 `json:"removed"`
}

// RemoveNotes handles DELETE /api/v1/notes
func (h *Handlers) RemoveNotes(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[note.RemoveRequest](w, r)
	if !ok {
		return
	}
	removed, err := h.Notes.Remove(r.Context(), req)
	if err != nil {
		writeNoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removeResponse{Removed: removed})
}

func noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return 0, false
	}
	return id, true
}
