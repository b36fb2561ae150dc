// Package broadcast defines the port for broadcasting note change events to connected subscribers.
package broadcast

import (
	"context"

	"github.com/Strob0t/notestream/internal/domain/event"
)

// Broadcaster delivers one event to every registered subscriber.
type Broadcaster interface {
	// Broadcast is fire-and-forget: delivery failures are handled by the
	// implementation and never reported to the caller.
	Broadcast(ctx context.Context, ev event.Event)
}
