package model

import "github.com/google/uuid"

// TokenManager issues and verifies identity tokens.
type TokenManager interface {
	Issue(userID uuid.UUID) (string, error)
	Verify(token string) bool
	ExtractSubject(token string) (string, error)
}
