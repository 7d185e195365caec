package handler

import (
	"context"
	"net/http"

	"github.com/dtroode/notes-server/internal/api/http/response"
	"github.com/dtroode/notes-server/internal/config"
	"github.com/dtroode/notes-server/internal/logger"
	"github.com/dtroode/notes-server/internal/model"
)

// AuthService defines signup and signin operations.
type AuthService interface {
	Signup(ctx context.Context, params model.SignupParams) (model.User, error)
	Signin(ctx context.Context, username, password string) (model.User, string, error)
}

// User handles account endpoints.
type User struct {
	authService AuthService
	cookie      config.Cookie
	logger      *logger.Logger
}

func NewUser(authService AuthService, cookie config.Cookie, logger *logger.Logger) *User {
	return &User{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *User) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, h.logger, OpSignup, err)
		return
	}

	_, err := h.authService.Signup(r.Context(), model.SignupParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(w, h.logger, OpSignup, err)
		return
	}

	response.JSON(w, http.StatusCreated, "Signup successful", nil)
}

// Signin sets the session cookie and returns the username.
func (h *User) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, h.logger, OpSignin, err)
		return
	}

	user, token, err := h.authService.Signin(r.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(w, h.logger, OpSignin, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(token, h.cookie.MaxAge))
	response.JSON(w, http.StatusOK, "Signin successful", user.Username)
}

// Signout expires the session cookie.
func (h *User) Signout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	response.JSON(w, http.StatusOK, "Signout successful", nil)
}

func (h *User) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
