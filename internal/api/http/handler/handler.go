package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/notes-server/internal/apperr"
	"github.com/dtroode/notes-server/internal/model"
)

// Failure message prefixes per operation.
const (
	OpSignup     = "Signup failed"
	OpSignin     = "Signin failed"
	OpAddNote    = "Failed to add note"
	OpListNotes  = "Failed to retrieve notes"
	OpGetNote    = "Failed to retrieve note"
	OpEditNote   = "Failed to edit note"
	OpDeleteNote = "Failed to delete note"
	OpDeleteMany = "Failed to delete multiple notes"
)

const maxBodyBytes = 8 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.NewErrValidation("Request body is required")
		case errors.As(err, &maxErr):
			return apperr.NewErrValidation("Request body is too large")
		default:
			return apperr.NewErrValidation("Request body is not valid JSON")
		}
	}

	return nil
}

func queryUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.URL.Query().Get(name))
	if err != nil {
		return uuid.Nil, apperr.NewErrValidation("Invalid " + name)
	}
	return id, nil
}

type noteResponse struct {
	NoteID    uuid.UUID `json:"noteId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toNoteResponse(n model.Note) noteResponse {
	return noteResponse{
		NoteID:    n.ID,
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
