package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/notes-server/internal/apperr"
	"github.com/dtroode/notes-server/internal/testutil"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	JSON(rec, http.StatusCreated, "Signup successful", nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Signup successful", body["message"])
	assert.Contains(t, body, "data")
	assert.Nil(t, body["data"])
}

func TestError(t *testing.T) {
	tests := []struct {
		name        string
		prefix      string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "not found",
			prefix:      "Failed to retrieve note",
			err:         apperr.NewErrNoteNotFound(),
			wantStatus:  http.StatusNotFound,
			wantMessage: "Failed to retrieve note: Note not found",
		},
		{
			name:        "wrapped duplicate",
			prefix:      "Signup failed",
			err:         fmt.Errorf("signup: %w", apperr.NewErrDuplicateUser()),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Signup failed: User already exists",
		},
		{
			name:        "invalid token without prefix",
			err:         apperr.NewErrInvalidToken(),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid JWT token",
		},
		{
			name:        "unexpected error is not echoed",
			prefix:      "Failed to add note",
			err:         errors.New("pq: password authentication failed"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			Error(rec, testutil.MakeNoopLogger(), tt.prefix, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMessage, body["message"])
			assert.Nil(t, body["data"])
		})
	}
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()

	Fail(rec, http.StatusMethodNotAllowed, "Method not allowed")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Method not allowed", body["message"])
	assert.Contains(t, body, "data")
	assert.Nil(t, body["data"])
}
