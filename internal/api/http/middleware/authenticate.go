package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dtroode/notes-server/internal/api/http/response"
	"github.com/dtroode/notes-server/internal/apperr"
	"github.com/dtroode/notes-server/internal/logger"
	"github.com/dtroode/notes-server/internal/model"
)

// UserIDParam is the query parameter naming the user a note request acts for.
const UserIDParam = "userId"

// Authenticator resolves the user ID a token belongs to.
type Authenticator interface {
	Authenticate(token string) (uuid.UUID, error)
}

// Authenticate reads the session cookie, checks it against the requested user
// and injects the user ID into the request context.
type Authenticate struct {
	authenticator  Authenticator
	contextManager model.ContextManager
	cookieName     string
	logger         *logger.Logger
}

func NewAuthenticate(
	authenticator Authenticator,
	contextManager model.ContextManager,
	cookieName string,
	logger *logger.Logger,
) *Authenticate {
	return &Authenticate{
		authenticator:  authenticator,
		contextManager: contextManager,
		cookieName:     cookieName,
		logger:         logger,
	}
}

// Require returns a middleware whose failure messages carry prefix.
func (m *Authenticate) Require(prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := m.authenticate(r)
			if err != nil {
				response.Error(w, m.logger, prefix, err)
				return
			}

			ctx := m.contextManager.SetUserIDToContext(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *Authenticate) authenticate(r *http.Request) (uuid.UUID, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		m.logger.Debug("Authenticate middleware: no session cookie", "path", r.URL.Path)
		return uuid.Nil, apperr.NewErrInvalidToken()
	}

	subject, err := m.authenticator.Authenticate(cookie.Value)
	if err != nil {
		return uuid.Nil, err
	}

	requested, err := uuid.Parse(r.URL.Query().Get(UserIDParam))
	if err != nil {
		return uuid.Nil, apperr.NewErrValidation("Invalid userId")
	}

	if requested != subject {
		m.logger.Warn("Authenticate middleware: user id does not match token",
			"subject", subject,
			"requested", requested)
		return uuid.Nil, apperr.NewErrSubjectMismatch()
	}

	return subject, nil
}
