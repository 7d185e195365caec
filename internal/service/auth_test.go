package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/notes-server/internal/apperr"
	"github.com/dtroode/notes-server/internal/mocks"
	"github.com/dtroode/notes-server/internal/model"
	"github.com/dtroode/notes-server/internal/testutil"
)

func newTestAuth(t *testing.T) (*Auth, *mocks.UserStore, *mocks.TokenManager) {
	t.Helper()
	users := mocks.NewUserStore(t)
	tokens := mocks.NewTokenManager(t)
	return NewAuth(users, tokens, bcrypt.MinCost, testutil.MakeNoopLogger()), users, tokens
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuth_Signup_Success(t *testing.T) {
	ctx := context.Background()
	a, users, _ := newTestAuth(t)

	users.On("GetByEmail", mock.Anything, "alice@example.com").Return(model.User{}, model.ErrNotFound)
	users.On("GetByUsername", mock.Anything, "alice").Return(model.User{}, model.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.ID != uuid.Nil &&
			u.Username == "alice" &&
			u.Email == "alice@example.com" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")) == nil &&
			!u.CreatedAt.IsZero()
	})).Return(func(_ context.Context, u model.User) (model.User, error) { return u, nil })

	user, err := a.Signup(ctx, model.SignupParams{Username: " alice ", Email: "alice@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
}

func TestAuth_Signup_Duplicate(t *testing.T) {
	ctx := context.Background()
	params := model.SignupParams{Username: "alice", Email: "alice@example.com", Password: "pw"}

	t.Run("email taken", func(t *testing.T) {
		a, users, _ := newTestAuth(t)
		users.On("GetByEmail", mock.Anything, params.Email).Return(model.User{ID: uuid.New()}, nil)

		_, err := a.Signup(ctx, params)
		assert.Equal(t, apperr.KindDuplicateUser, apperr.KindOf(err))
		assert.EqualError(t, err, "User already exists")
		users.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
	})

	t.Run("username taken", func(t *testing.T) {
		a, users, _ := newTestAuth(t)
		users.On("GetByEmail", mock.Anything, params.Email).Return(model.User{}, model.ErrNotFound)
		users.On("GetByUsername", mock.Anything, params.Username).Return(model.User{ID: uuid.New()}, nil)

		_, err := a.Signup(ctx, params)
		assert.Equal(t, apperr.KindDuplicateUser, apperr.KindOf(err))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unique violation on insert", func(t *testing.T) {
		a, users, _ := newTestAuth(t)
		users.On("GetByEmail", mock.Anything, params.Email).Return(model.User{}, model.ErrNotFound)
		users.On("GetByUsername", mock.Anything, params.Username).Return(model.User{}, model.ErrNotFound)
		users.On("Create", mock.Anything, mock.Anything).Return(model.User{}, model.ErrAlreadyExists)

		_, err := a.Signup(ctx, params)
		assert.Equal(t, apperr.KindDuplicateUser, apperr.KindOf(err))
	})
}

func TestAuth_Signup_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params model.SignupParams
	}{
		{name: "empty username", params: model.SignupParams{Username: "  ", Email: "a@b.c", Password: "pw"}},
		{name: "empty email", params: model.SignupParams{Username: "a", Email: "", Password: "pw"}},
		{name: "bad email", params: model.SignupParams{Username: "a", Email: "not-an-email", Password: "pw"}},
		{name: "display name email", params: model.SignupParams{Username: "a", Email: "Alice <a@b.c>", Password: "pw"}},
		{name: "empty password", params: model.SignupParams{Username: "a", Email: "a@b.c", Password: ""}},
		{name: "long password", params: model.SignupParams{Username: "a", Email: "a@b.c", Password: strings.Repeat("x", 73)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, _ := newTestAuth(t)

			_, err := a.Signup(context.Background(), tt.params)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestAuth_Signup_StoreError(t *testing.T) {
	a, users, _ := newTestAuth(t)
	users.On("GetByEmail", mock.Anything, "a@b.c").Return(model.User{}, errors.New("db down"))

	_, err := a.Signup(context.Background(), model.SignupParams{Username: "a", Email: "a@b.c", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnexpected, apperr.KindOf(err))
}

func TestAuth_Signin(t *testing.T) {
	ctx := context.Background()
	stored := model.User{ID: uuid.New(), Username: "alice", PasswordHash: hashPassword(t, "right")}

	t.Run("success", func(t *testing.T) {
		a, users, tokens := newTestAuth(t)
		users.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)
		tokens.On("Issue", stored.ID).Return("signed", nil)

		user, tok, err := a.Signin(ctx, "alice", "right")
		require.NoError(t, err)
		assert.Equal(t, stored.ID, user.ID)
		assert.Equal(t, "signed", tok)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		a, users, _ := newTestAuth(t)
		users.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)
		users.On("GetByUsername", mock.Anything, "bob").Return(model.User{}, model.ErrNotFound)

		_, _, wrongPw := a.Signin(ctx, "alice", "wrong")
		_, _, unknown := a.Signin(ctx, "bob", "right")

		assert.Equal(t, apperr.KindInvalidCredentials, apperr.KindOf(wrongPw))
		assert.Equal(t, apperr.KindInvalidCredentials, apperr.KindOf(unknown))
		assert.Equal(t, wrongPw.Error(), unknown.Error())
		assert.Equal(t, "Invalid username or password", wrongPw.Error())
	})

	t.Run("token issue fails", func(t *testing.T) {
		a, users, tokens := newTestAuth(t)
		users.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)
		tokens.On("Issue", stored.ID).Return("", errors.New("sign"))

		_, _, err := a.Signin(ctx, "alice", "right")
		assert.Equal(t, apperr.KindUnexpected, apperr.KindOf(err))
	})
}
