package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/notes-server/internal/model"
)

var _ model.NoteStore = (*NoteRepository)(nil)

const noteColumns = `n_id, u_id, title, body, body_key, created_at, updated_at`

type NoteRepository struct {
	db *Connection
}

func NewNoteRepository(db *Connection) *NoteRepository {
	return &NoteRepository{
		db: db,
	}
}

func (r *NoteRepository) Create(ctx context.Context, note model.Note) (model.Note, error) {
	query := `INSERT INTO notes (n_id, u_id, title, body, body_key, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + noteColumns

	saved, err := scanNote(r.db.QueryRow(ctx, query,
		note.ID, note.OwnerID, note.Title, note.Body, note.BodyKey, note.CreatedAt, note.UpdatedAt,
	))
	if err != nil {
		return model.Note{}, mapError(err, "create note")
	}

	return saved, nil
}

func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes
			  WHERE u_id = $1
			  ORDER BY created_at ASC, n_id ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return collectNotes(rows, "list notes")
}

func (r *NoteRepository) GetByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (model.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE u_id = $1 AND n_id = $2`

	note, err := scanNote(r.db.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		return model.Note{}, mapError(err, "get note")
	}

	return note, nil
}

func (r *NoteRepository) Update(ctx context.Context, note model.Note) (model.Note, error) {
	query := `UPDATE notes
			  SET title = $3, body = $4, body_key = $5, updated_at = $6
			  WHERE u_id = $1 AND n_id = $2
			  RETURNING ` + noteColumns

	saved, err := scanNote(r.db.QueryRow(ctx, query,
		note.OwnerID, note.ID, note.Title, note.Body, note.BodyKey, note.UpdatedAt,
	))
	if err != nil {
		return model.Note{}, mapError(err, "update note")
	}

	return saved, nil
}

func (r *NoteRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) (model.Note, error) {
	query := `DELETE FROM notes WHERE u_id = $1 AND n_id = $2 RETURNING ` + noteColumns

	deleted, err := scanNote(r.db.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		return model.Note{}, mapError(err, "delete note")
	}

	return deleted, nil
}

func (r *NoteRepository) DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]model.Note, error) {
	if len(ids) == 0 {
		return []model.Note{}, nil
	}

	query := `DELETE FROM notes WHERE u_id = $1 AND n_id = ANY($2) RETURNING ` + noteColumns

	rows, err := r.db.Query(ctx, query, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to delete notes: %w", err)
	}

	return collectNotes(rows, "delete notes")
}

func scanNote(row rowScanner) (model.Note, error) {
	var note model.Note
	err := row.Scan(&note.ID, &note.OwnerID, &note.Title, &note.Body, &note.BodyKey, &note.CreatedAt, &note.UpdatedAt)
	return note, err
}

func collectNotes(rows pgx.Rows, op string) ([]model.Note, error) {
	notes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Note, error) {
		return scanNote(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	if notes == nil {
		notes = []model.Note{}
	}

	return notes, nil
}
