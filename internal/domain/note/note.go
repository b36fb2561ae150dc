// Package note defines the note record whose lifecycle is streamed to subscribers.
package note

import (
	"errors"
	"fmt"
	"time"

	"github.com/Strob0t/notestream/internal/domain"
)

// MaxFields caps the number of fields a single note may carry.
const MaxFields = 64

// Note is a record in the note store. Only ID and the first field are
// surfaced to stream subscribers.
type Note struct {
	ID        int64     `json:"id"`
	DeckID    int64     `json:"deck_id"`
	Fields    []string  `json:"fields"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FirstField returns the first field value, or "" when the note has no fields.
func (n Note) FirstField() string {
	if len(n.Fields) == 0 {
		return ""
	}
	return n.Fields[0]
}

// CreateRequest holds the fields for creating a new note.
type CreateRequest struct {
	DeckID int64    `json:"deck_id"`
	Fields []string `json:"fields"`
}

// UpdateRequest replaces the fields of an existing note.
type UpdateRequest struct {
	Fields []string `json:"fields"`
}

// RemoveRequest lists the notes to delete in one batch.
type RemoveRequest struct {
	IDs []int64 `json:"ids"`
}

// Validate checks a CreateRequest.
func (r CreateRequest) Validate() error {
	return validateFields(r.Fields)
}

// Validate checks an UpdateRequest.
func (r UpdateRequest) Validate() error {
	return validateFields(r.Fields)
}

// Validate checks a RemoveRequest.
func (r RemoveRequest) Validate() error {
	if len(r.IDs) == 0 {
		return fmt.Errorf("%w: ids: %w", domain.ErrValidation, errEmpty)
	}
	return nil
}

var errEmpty = errors.New("must not be empty")

func validateFields(fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: fields: %w", domain.ErrValidation, errEmpty)
	}
	if len(fields) > MaxFields {
		return fmt.Errorf("%w: fields: at most %d allowed", domain.ErrValidation, MaxFields)
	}
	return nil
}
