package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the health check and the notes API on r.
// Stream endpoints are mounted separately so they bypass request timeouts.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/notes", h.ListNotes)
		r.Post("/notes", h.CreateNote)
		r.Delete("/notes", h.RemoveNotes)
		r.Get("/notes/{id}", h.GetNote)
		r.Put("/notes/{id}", h.UpdateNote)
	})
}
