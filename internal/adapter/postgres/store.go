package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/notestream/internal/domain/note"
	"github.com/Strob0t/notestream/internal/port/database"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ database.Store = (*Store)(nil)

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ListNoteIDs returns ids in creation order, which is the order snapshots
// are streamed in.
func (s *Store) ListNoteIDs(ctx context.Context) ([]int64, error) {
	rows, _ := s.pool.Query(ctx, `SELECT id FROM notes ORDER BY id`)
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("list note ids: %w", err)
	}
	return ids, nil
}

func (s *Store) ListNotes(ctx context.Context) ([]note.Note, error) {
	rows, _ := s.pool.Query(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY id`)
	notes, err := pgx.CollectRows(rows, rowToNote)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (s *Store) GetNote(ctx context.Context, id int64) (*note.Note, error) {
	rows, _ := s.pool.Query(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)
	n, err := pgx.CollectOneRow(rows, rowToNote)
	if err != nil {
		return nil, noteErr("get", id, err)
	}
	return &n, nil
}

func (s *Store) CreateNote(ctx context.Context, req note.CreateRequest) (*note.Note, error) {
	rows, _ := s.pool.Query(ctx,
		`INSERT INTO notes (deck_id, fields) VALUES ($1, $2) RETURNING `+noteColumns,
		req.DeckID, fieldsParam(req.Fields))
	n, err := pgx.CollectOneRow(rows, rowToNote)
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return &n, nil
}

func (s *Store) UpdateNote(ctx context.Context, id int64, req note.UpdateRequest) (*note.Note, error) {
	rows, _ := s.pool.Query(ctx,
		`UPDATE notes SET fields = $2, updated_at = now() WHERE id = $1 RETURNING `+noteColumns,
		id, fieldsParam(req.Fields))
	n, err := pgx.CollectOneRow(rows, rowToNote)
	if err != nil {
		return nil, noteErr("update", id, err)
	}
	return &n, nil
}

// DeleteNotes removes every listed note in one statement and reports how
// many existed.
func (s *Store) DeleteNotes(ctx context.Context, ids []int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM notes WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete notes: %w", err)
	}
	return tag.RowsAffected(), nil
}
