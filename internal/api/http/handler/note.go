package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dtroode/notes-server/internal/api/http/response"
	"github.com/dtroode/notes-server/internal/apperr"
	"github.com/dtroode/notes-server/internal/logger"
	"github.com/dtroode/notes-server/internal/model"
)

const noteIDParam = "noteId"

// NoteService defines note operations scoped to an owner.
type NoteService interface {
	Add(ctx context.Context, userID uuid.UUID, params model.NoteParams) (model.Note, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Note, error)
	Get(ctx context.Context, userID, noteID uuid.UUID) (model.Note, error)
	Edit(ctx context.Context, userID, noteID uuid.UUID, params model.NoteParams) (model.Note, error)
	Delete(ctx context.Context, userID, noteID uuid.UUID) error
	DeleteMany(ctx context.Context, userID uuid.UUID, noteIDs []uuid.UUID) (int, error)
}

// Note handles note endpoints. Every route runs behind the Authenticate middleware.
type Note struct {
	noteService    NoteService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewNote(noteService NoteService, contextManager model.ContextManager, logger *logger.Logger) *Note {
	return &Note{
		noteService:    noteService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type noteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type deleteManyRequest struct {
	NoteIDs []uuid.UUID `json:"noteIds"`
}

type deleteManyResponse struct {
	Deleted int `json:"deleted"`
}

func (h *Note) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, OpAddNote)
	if !ok {
		return
	}

	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, h.logger, OpAddNote, err)
		return
	}

	note, err := h.noteService.Add(r.Context(), userID, model.NoteParams{Title: req.Title, Body: req.Body})
	if err != nil {
		response.Error(w, h.logger, OpAddNote, err)
		return
	}

	response.JSON(w, http.StatusCreated, "Note added successfully", toNoteResponse(note))
}

func (h *Note) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, OpListNotes)
	if !ok {
		return
	}

	notes, err := h.noteService.List(r.Context(), userID)
	if err != nil {
		response.Error(w, h.logger, OpListNotes, err)
		return
	}

	out := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}

	response.JSON(w, http.StatusOK, "Notes retrieved successfully", out)
}

func (h *Note) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, OpGetNote)
	if !ok {
		return
	}

	noteID, err := queryUUID(r, noteIDParam)
	if err != nil {
		response.Error(w, h.logger, OpGetNote, err)
		return
	}

	note, err := h.noteService.Get(r.Context(), userID, noteID)
	if err != nil {
		response.Error(w, h.logger, OpGetNote, err)
		return
	}

	response.JSON(w, http.StatusOK, "Note retrieved successfully", toNoteResponse(note))
}

func (h *Note) Edit(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, OpEditNote)
	if !ok {
		return
	}

	noteID, err := queryUUID(r, noteIDParam)
	if err != nil {
		response.Error(w, h.logger, OpEditNote, err)
		return
	}

	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, h.logger, OpEditNote, err)
		return
	}

	note, err := h.noteService.Edit(r.Context(), userID, noteID, model.NoteParams{Title: req.Title, Body: req.Body})
	if err != nil {
		response.Error(w, h.logger, OpEditNote, err)
		return
	}

	response.JSON(w, http.StatusOK, "Note edited successfully", toNoteResponse(note))
}

func (h *Note) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, OpDeleteNote)
	if !ok {
		return
	}

	noteID, err := queryUUID(r, noteIDParam)
	if err != nil {
		response.Error(w, h.logger, OpDeleteNote, err)
		return
	}

	if err := h.noteService.Delete(r.Context(), userID, noteID); err != nil {
		response.Error(w, h.logger, OpDeleteNote, err)
		return
	}

	response.JSON(w, http.StatusOK, "Note deleted successfully", nil)
}

func (h *Note) DeleteMany(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, OpDeleteMany)
	if !ok {
		return
	}

	var req deleteManyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, h.logger, OpDeleteMany, err)
		return
	}

	deleted, err := h.noteService.DeleteMany(r.Context(), userID, req.NoteIDs)
	if err != nil {
		response.Error(w, h.logger, OpDeleteMany, err)
		return
	}

	response.JSON(w, http.StatusOK, "Multiple notes deleted successfully", deleteManyResponse{Deleted: deleted})
}

func (h *Note) userID(w http.ResponseWriter, r *http.Request, op string) (uuid.UUID, bool) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		response.Error(w, h.logger, op, apperr.NewErrInvalidToken())
		return uuid.Nil, false
	}
	return userID, true
}
