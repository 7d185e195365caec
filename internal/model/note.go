package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NoteStore defines persistence operations for notes.
//
// Every method that addresses a single note takes the owner ID as well: a note
// belonging to another user is reported as ErrNotFound.
type NoteStore interface {
	Create(ctx context.Context, note Note) (Note, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Note, error)
	GetByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (Note, error)
	Update(ctx context.Context, note Note) (Note, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) (Note, error)
	DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]Note, error)
}

// Note represents a stored note.
type Note struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Title   string
	Body    string
	// BodyKey is the object storage key holding the body when it was offloaded.
	BodyKey   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteParams carries the user-editable fields of a note.
type NoteParams struct {
	Title string
	Body  string
}
