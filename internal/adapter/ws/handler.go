// Package ws serves the note event stream over WebSocket. Each event is one
// text message carrying the bare JSON payload.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"

	"github.com/Strob0t/notestream/internal/stream"
)

// Handler accepts WebSocket subscribers and hands them to the hub.
type Handler struct {
	hub          *stream.Hub
	allowOrigins []string
}

// NewHandler creates a WebSocket handler serving hub's stream. allowOrigins
// lists accepted origins (scheme optional, host patterns allowed); "*"
// accepts any origin.
func NewHandler(hub *stream.Hub, allowOrigins ...string) *Handler {
	patterns := make([]string, 0, len(allowOrigins))
	for _, o := range allowOrigins {
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		if o != "" {
			patterns = append(patterns, o)
		}
	}
	return &Handler{hub: hub, allowOrigins: patterns}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{OriginPatterns: h.allowOrigins}
	for _, o := range h.allowOrigins {
		if o == "*" {
			opts = &websocket.AcceptOptions{InsecureSkipVerify: true}
			break
		}
	}

	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		slog.Error("websocket accept failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Read loop: detects disconnects and consumes control frames. Clients
	// are not expected to send data; anything they send is discarded.
	go func() {
		defer cancel()
		for {
			if _, _, err := c.Read(ctx); err != nil {
				return
			}
		}
	}()

	if err := h.hub.Serve(ctx, &transport{c: c}, r.RemoteAddr); err != nil {
		slog.Error("websocket subscriber ended", "remote", r.RemoteAddr, "error", err)
	}
	_ = c.Close(websocket.StatusNormalClosure, "")
}

type transport struct {
	c *websocket.Conn
}

func (t *transport) Name() string { return "ws" }

func (t *transport) WriteFrame(ctx context.Context, f stream.Frame) error {
	return t.c.Write(ctx, websocket.MessageText, f.Payload)
}

func (t *transport) Ping(ctx context.Context) error {
	return t.c.Ping(ctx)
}

// Close drops the connection without a close handshake so eviction never
// waits on the peer.
func (t *transport) Close() {
	_ = t.c.CloseNow()
}
