package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dtroode/notes-server/internal/apperr"
	"github.com/dtroode/notes-server/internal/logger"
	"github.com/dtroode/notes-server/internal/model"
)

const maxTitleLength = 255

type Note struct {
	noteStore model.NoteStore
	userStore model.UserStore
	storage   model.Storage
	// offloadThreshold is the body length in bytes above which bodies go to
	// storage. Zero or a nil storage keeps every body inline.
	offloadThreshold int
	logger           *logger.Logger
	now              func() time.Time
}

func NewNote(
	noteStore model.NoteStore,
	userStore model.UserStore,
	storage model.Storage,
	offloadThreshold int,
	logger *logger.Logger,
) *Note {
	return &Note{
		noteStore:        noteStore,
		userStore:        userStore,
		storage:          storage,
		offloadThreshold: offloadThreshold,
		logger:           logger,
		now:              time.Now,
	}
}

// BodyKey returns the storage key of one version of an offloaded note body.
// Every upload gets a fresh version so a row never points at an object that a
// failed write has already replaced.
func BodyKey(userID, noteID, version uuid.UUID) string {
	return fmt.Sprintf("user-%s/note-%s-%s", userID, noteID, version)
}

func (s *Note) Add(ctx context.Context, userID uuid.UUID, params model.NoteParams) (model.Note, error) {
	if err := validateNote(params); err != nil {
		return model.Note{}, err
	}

	_, err := s.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Info("Note service: owner not found", "user_id", userID)
		return model.Note{}, apperr.NewErrMissingSubject()
	}
	if err != nil {
		return model.Note{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	now := s.now().UTC()
	note := model.Note{
		ID:        uuid.New(),
		OwnerID:   userID,
		Title:     params.Title,
		Body:      params.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	row, err := s.offload(ctx, note)
	if err != nil {
		return model.Note{}, err
	}

	saved, err := s.noteStore.Create(ctx, row)
	if err != nil {
		s.logger.Error("Note service: failed to create note",
			"user_id", userID,
			"error", err.Error())
		if row.BodyKey != "" {
			s.removeBody(ctx, row.BodyKey)
		}
		return model.Note{}, fmt.Errorf("failed to create note: %w", err)
	}
	saved.Body = params.Body

	s.logger.Info("Note service: note added",
		"user_id", userID,
		"note_id", saved.ID,
		"offloaded", saved.BodyKey != "")

	return saved, nil
}

func (s *Note) List(ctx context.Context, userID uuid.UUID) ([]model.Note, error) {
	notes, err := s.noteStore.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	for i := range notes {
		if notes[i], err = s.hydrate(ctx, notes[i]); err != nil {
			return nil, err
		}
	}

	return notes, nil
}

func (s *Note) Get(ctx context.Context, userID, noteID uuid.UUID) (model.Note, error) {
	note, err := s.noteStore.GetByOwnerAndID(ctx, userID, noteID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Note{}, apperr.NewErrNoteNotFound()
	}
	if err != nil {
		return model.Note{}, fmt.Errorf("failed to get note: %w", err)
	}

	return s.hydrate(ctx, note)
}

func (s *Note) Edit(ctx context.Context, userID, noteID uuid.UUID, params model.NoteParams) (model.Note, error) {
	if err := validateNote(params); err != nil {
		return model.Note{}, err
	}

	current, err := s.noteStore.GetByOwnerAndID(ctx, userID, noteID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Note{}, apperr.NewErrNoteNotFound()
	}
	if err != nil {
		return model.Note{}, fmt.Errorf("failed to get note: %w", err)
	}

	next := current
	next.Title = params.Title
	next.Body = params.Body
	next.BodyKey = ""
	next.UpdatedAt = s.now().UTC()

	row, err := s.offload(ctx, next)
	if err != nil {
		return model.Note{}, err
	}

	saved, err := s.noteStore.Update(ctx, row)
	if err != nil {
		if row.BodyKey != "" {
			s.removeBody(ctx, row.BodyKey)
		}
		if errors.Is(err, model.ErrNotFound) {
			return model.Note{}, apperr.NewErrNoteNotFound()
		}
		s.logger.Error("Note service: failed to update note",
			"user_id", userID,
			"note_id", noteID,
			"error", err.Error())
		return model.Note{}, fmt.Errorf("failed to update note: %w", err)
	}
	saved.Body = params.Body

	if current.BodyKey != "" && current.BodyKey != saved.BodyKey {
		s.removeBody(ctx, current.BodyKey)
	}

	s.logger.Info("Note service: note edited", "user_id", userID, "note_id", noteID)

	return saved, nil
}

func (s *Note) Delete(ctx context.Context, userID, noteID uuid.UUID) error {
	deleted, err := s.noteStore.Delete(ctx, userID, noteID)
	if errors.Is(err, model.ErrNotFound) {
		return apperr.NewErrNoteNotFound()
	}
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if deleted.BodyKey != "" {
		s.removeBody(ctx, deleted.BodyKey)
	}

	s.logger.Info("Note service: note deleted", "user_id", userID, "note_id", noteID)

	return nil
}

// DeleteMany removes the notes among noteIDs owned by the user and reports how
// many were removed. IDs of missing or foreign notes are ignored.
func (s *Note) DeleteMany(ctx context.Context, userID uuid.UUID, noteIDs []uuid.UUID) (int, error) {
	ids := uniqueIDs(noteIDs)
	if len(ids) == 0 {
		return 0, nil
	}

	deleted, err := s.noteStore.DeleteMany(ctx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notes: %w", err)
	}

	for _, note := range deleted {
		if note.BodyKey != "" {
			s.removeBody(ctx, note.BodyKey)
		}
	}

	s.logger.Info("Note service: notes deleted",
		"user_id", userID,
		"requested", len(ids),
		"deleted", len(deleted))

	return len(deleted), nil
}

func (s *Note) offloadEnabled() bool {
	return s.storage != nil && s.offloadThreshold > 0
}

// offload moves an oversized body to storage and returns the row to persist.
func (s *Note) offload(ctx context.Context, note model.Note) (model.Note, error) {
	if !s.offloadEnabled() || len(note.Body) <= s.offloadThreshold {
		return note, nil
	}

	key := BodyKey(note.OwnerID, note.ID, uuid.New())
	if err := s.storage.Upload(ctx, key, strings.NewReader(note.Body), int64(len(note.Body))); err != nil {
		s.logger.Error("Note service: failed to upload body",
			"note_id", note.ID,
			"error", err.Error())
		return model.Note{}, fmt.Errorf("failed to upload note body: %w", err)
	}

	note.Body = ""
	note.BodyKey = key

	return note, nil
}

func (s *Note) hydrate(ctx context.Context, note model.Note) (model.Note, error) {
	if note.BodyKey == "" {
		return note, nil
	}
	if s.storage == nil {
		return model.Note{}, fmt.Errorf("note %s body is offloaded but storage is disabled", note.ID)
	}

	rc, err := s.storage.Download(ctx, note.BodyKey)
	if err != nil {
		return model.Note{}, fmt.Errorf("failed to download note body: %w", err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return model.Note{}, fmt.Errorf("failed to read note body: %w", err)
	}
	note.Body = string(body)

	return note, nil
}

func (s *Note) removeBody(ctx context.Context, key string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Note service: failed to remove stored body",
			"key", key,
			"error", err.Error())
	}
}

func validateNote(params model.NoteParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return apperr.NewErrValidation("Title is required")
	}
	if utf8.RuneCountInString(params.Title) > maxTitleLength {
		return apperr.NewErrValidation(fmt.Sprintf("Title must be at most %d characters", maxTitleLength))
	}

	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
