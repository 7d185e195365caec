package service

import (
	"github.com/google/uuid"

	"github.com/dtroode/notes-server/internal/apperr"
	"github.com/dtroode/notes-server/internal/logger"
	"github.com/dtroode/notes-server/internal/model"
)

// Guard decides whether a request carrying a token may act as a user.
type Guard struct {
	tokenManager model.TokenManager
	logger       *logger.Logger
}

func NewGuard(tokenManager model.TokenManager, logger *logger.Logger) *Guard {
	return &Guard{
		tokenManager: tokenManager,
		logger:       logger,
	}
}

// Authorize accepts a verified token together with the subject extracted from it.
func (g *Guard) Authorize(token, subject string) (uuid.UUID, error) {
	if token == "" || !g.tokenManager.Verify(token) {
		g.logger.Debug("Guard: token rejected")
		return uuid.Nil, apperr.NewErrInvalidToken()
	}

	if subject == "" {
		g.logger.Debug("Guard: token has no subject")
		return uuid.Nil, apperr.NewErrMissingSubject()
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		g.logger.Debug("Guard: subject is not a user id", "subject", subject)
		return uuid.Nil, apperr.NewErrMissingSubject()
	}

	return userID, nil
}

// Authenticate extracts the subject from token and authorizes it.
func (g *Guard) Authenticate(token string) (uuid.UUID, error) {
	// Extraction errors leave subject empty; Authorize reports the right kind.
	subject, _ := g.tokenManager.ExtractSubject(token)

	return g.Authorize(token, subject)
}
