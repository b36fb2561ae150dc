package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/notestream/internal/domain"
	"github.com/Strob0t/notestream/internal/domain/note"
)

const noteColumns = `id, deck_id, fields, created_at, updated_at`

// rowToNote scans one noteColumns row. It is a pgx.RowToFunc.
func rowToNote(row pgx.CollectableRow) (note.Note, error) {
	var n note.Note
	err := row.Scan(&n.ID, &n.DeckID, &n.Fields, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// fieldsParam keeps a missing field list from being stored as NULL.
func fieldsParam(fields []string) []string {
	if fields == nil {
		return []string{}
	}
	return fields
}

// noteErr wraps err for note id, mapping a missing row to domain.ErrNotFound.
func noteErr(op string, id int64, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s note %d: %w", op, id, domain.ErrNotFound)
	}
	return fmt.Errorf("%s note %d: %w", op, id, err)
}
