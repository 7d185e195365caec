package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/notes-server/internal/apperr"
	"github.com/dtroode/notes-server/internal/logger"
	"github.com/dtroode/notes-server/internal/model"
)

// bcrypt ignores input past this length.
const maxPasswordBytes = 72

type Auth struct {
	userStore    model.UserStore
	tokenManager model.TokenManager
	bcryptCost   int
	logger       *logger.Logger
	now          func() time.Time

	// dummyHash is compared against when the username is unknown so both
	// signin failures cost the same.
	dummyHash []byte
}

func NewAuth(
	userStore model.UserStore,
	tokenManager model.TokenManager,
	bcryptCost int,
	logger *logger.Logger,
) *Auth {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("notes-server"), bcryptCost)

	return &Auth{
		userStore:    userStore,
		tokenManager: tokenManager,
		bcryptCost:   bcryptCost,
		logger:       logger,
		now:          time.Now,
		dummyHash:    dummy,
	}
}

// Signup creates an account after checking that neither the email nor the
// username is taken.
func (a *Auth) Signup(ctx context.Context, params model.SignupParams) (model.User, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.Email = strings.TrimSpace(params.Email)

	if err := validateSignup(params); err != nil {
		return model.User{}, err
	}

	a.logger.Debug("Auth service: starting signup", "username", params.Username)

	if err := a.ensureAvailable(ctx, params); err != nil {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), a.bcryptCost)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password", "error", err.Error())
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := a.now().UTC()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, model.ErrAlreadyExists) {
		a.logger.Info("Auth service: user already exists", "username", params.Username)
		return model.User{}, apperr.NewErrDuplicateUser()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"username", params.Username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user signed up", "user_id", user.ID)

	return user, nil
}

func (a *Auth) ensureAvailable(ctx context.Context, params model.SignupParams) error {
	lookups := []struct {
		field string
		get   func() (model.User, error)
	}{
		{field: "email", get: func() (model.User, error) { return a.userStore.GetByEmail(ctx, params.Email) }},
		{field: "username", get: func() (model.User, error) { return a.userStore.GetByUsername(ctx, params.Username) }},
	}

	for _, l := range lookups {
		_, err := l.get()
		if err == nil {
			a.logger.Info("Auth service: user already exists", "field", l.field)
			return apperr.NewErrDuplicateUser()
		}
		if !errors.Is(err, model.ErrNotFound) {
			a.logger.Error("Auth service: failed to look up user",
				"field", l.field,
				"error", err.Error())
			return fmt.Errorf("failed to get user by %s: %w", l.field, err)
		}
	}

	return nil
}

// Signin checks the credentials and issues a token for the user.
func (a *Auth) Signin(ctx context.Context, username, password string) (model.User, string, error) {
	username = strings.TrimSpace(username)

	user, err := a.userStore.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
		a.logger.Info("Auth service: signin for unknown user", "username", username)
		return model.User{}, "", apperr.NewErrInvalidCredentials()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by username",
			"username", username,
			"error", err.Error())
		return model.User{}, "", fmt.Errorf("failed to get user by username: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.logger.Info("Auth service: password mismatch", "user_id", user.ID)
		return model.User{}, "", apperr.NewErrInvalidCredentials()
	}

	token, err := a.tokenManager.Issue(user.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"user_id", user.ID,
			"error", err.Error())
		return model.User{}, "", fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: user signed in", "user_id", user.ID)

	return user, token, nil
}

func validateSignup(params model.SignupParams) error {
	if params.Username == "" {
		return apperr.NewErrValidation("Username is required")
	}
	if params.Email == "" {
		return apperr.NewErrValidation("Email is required")
	}
	if addr, err := mail.ParseAddress(params.Email); err != nil || addr.Address != params.Email {
		return apperr.NewErrValidation("Email is invalid")
	}
	if params.Password == "" {
		return apperr.NewErrValidation("Password is required")
	}
	if len(params.Password) > maxPasswordBytes {
		return apperr.NewErrValidation(fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	}

	return nil
}
