// Package event defines the change notifications streamed to subscribers.
package event

import "fmt"

// Kind classifies a change notification.
type Kind int

const (
	// KindAdd announces a note that subscribers should add to their view.
	KindAdd Kind = iota + 1
	// KindRemove announces a note that subscribers should drop from their view.
	KindRemove
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindRemove:
		return "remove"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindAdd || k == KindRemove
}

// Event is one change notification. It is a value type and is never mutated
// after construction.
type Event struct {
	Kind   Kind
	Text   string
	NoteID int64
}

// Add builds an add event for the given note id and display text.
func Add(noteID int64, text string) Event {
	return Event{Kind: KindAdd, Text: text, NoteID: noteID}
}

// Remove builds a remove event for the given note id and display text.
func Remove(noteID int64, text string) Event {
	return Event{Kind: KindRemove, Text: text, NoteID: noteID}
}
