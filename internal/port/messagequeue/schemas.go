package messagequeue

// NotePayload is a note as carried on the wire.
type NotePayload struct {
	ID     int64    `json:"id"`
	Fields []string `json:"fields"`
}

// NoteCreatedPayload is the schema for notes.created messages.
type NoteCreatedPayload struct {
	Note   NotePayload `json:"note"`
	DeckID int64       `json:"deck_id"`
}

// NoteRemovedPayload is the schema for notes.removed messages. The notes are
// sent as they were before deletion because the publisher has already
// removed them from its store.
type NoteRemovedPayload struct {
	Notes []NotePayload `json:"notes"`
}

// NoteUpdatedPayload is the schema for notes.updated messages.
type NoteUpdatedPayload struct {
	Old NotePayload `json:"old"`
	New NotePayload `json:"new"`
}
