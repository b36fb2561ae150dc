// Package sse serves the note event stream as Server-Sent Events.
package sse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Strob0t/notestream/internal/stream"
)

var keepalive = []byte(": keepalive\n\n")

// Handler accepts SSE subscribers and hands them to the hub.
type Handler struct {
	hub *stream.Hub
}

// NewHandler creates an SSE handler serving hub's stream.
func NewHandler(hub *stream.Hub) *Handler {
	return &Handler{hub: hub}
}

// ServeHTTP writes the stream handshake and blocks until the subscriber
// goes away, is evicted or the hub closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	hdr := w.Header()
	hdr.Set("Cache-Control", "no-store")
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		slog.Debug("sse handshake flush failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	t := &transport{w: w, rc: rc}
	if err := h.hub.Serve(r.Context(), t, r.RemoteAddr); err != nil {
		slog.Error("sse subscriber ended", "remote", r.RemoteAddr, "error", err)
	}
}

// transport writes frames to one SSE response.
type transport struct {
	w  io.Writer
	rc *http.ResponseController
}

func (t *transport) Name() string { return "sse" }

func (t *transport) WriteFrame(ctx context.Context, f stream.Frame) error {
	return t.write(ctx, f.SSE)
}

func (t *transport) Ping(ctx context.Context) error {
	return t.write(ctx, keepalive)
}

// Close is a no-op; the response ends when ServeHTTP returns.
func (t *transport) Close() {}

func (t *transport) write(ctx context.Context, b []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := t.rc.SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
		defer func() { _ = t.rc.SetWriteDeadline(time.Time{}) }()
	}

	if _, err := t.w.Write(b); err != nil {
		return err
	}
	return t.rc.Flush()
}
