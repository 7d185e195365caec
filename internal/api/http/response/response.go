// Package response writes the JSON envelope every endpoint answers with.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/dtroode/notes-server/internal/apperr"
	"github.com/dtroode/notes-server/internal/logger"
)

// Envelope is the body of every response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// JSON writes a successful envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failure envelope for err. Domain errors keep their message
// behind prefix; anything else is logged and reported generically.
func Error(w http.ResponseWriter, log *logger.Logger, prefix string, err error) {
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind == apperr.KindUnexpected {
		log.Error("HTTP: request failed", "operation", prefix, "error", err.Error())
		write(w, http.StatusInternalServerError, Envelope{Message: apperr.NewErrUnexpected(err).Message})
		return
	}

	log.Debug("HTTP: request rejected", "operation", prefix, "kind", appErr.Kind, "message", appErr.Message)

	message := appErr.Message
	if prefix != "" {
		message = prefix + ": " + message
	}
	write(w, appErr.Status(), Envelope{Message: message})
}

// Fail writes a failure envelope with a fixed status and message.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Message: message})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
