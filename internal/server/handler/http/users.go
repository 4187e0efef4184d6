package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/catalog/internal/models"
	"github.com/atinyakov/catalog/internal/service"
)

// AuthService defines the account operations required by the UserHandler.
type AuthService interface {
	// Register creates a user from a sign-up request.
	Register(ctx context.Context, reg models.Registration) (*models.User, error)
	// Login checks credentials; it fails with service.ErrInvalidCredentials.
	Login(ctx context.Context, creds models.Credentials) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// UserHandler handles HTTP requests for user accounts and login.
type UserHandler struct {
	// AuthService performs the underlying account operations.
	AuthService AuthService
	// Logger records server-side failures.
	Logger *zap.Logger
}

var (
	usersMessages = messages{failed: "Error fetching users."}
	userMessages  = messages{notFound: "User not found.", failed: "Error fetching user."}
	addUserMsg    = messages{
		duplicate: "User with this email already exists.",
		failed:    "Error adding user.",
	}
	loginMessages = messages{failed: "Error logging in."}
)

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.AuthService.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.Logger, err, usersMessages)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser handles GET /users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.AuthService.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err, userMessages)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Register handles POST /users. It answers 201 with the new user's id.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if !decodeBody(w, r, &reg) {
		return
	}
	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Missing required fields: username, email, or password.")
		return
	}

	u, err := h.AuthService.Register(r.Context(), reg)
	if err != nil {
		writeError(w, h.Logger, err, addUserMsg)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": u.ID})
}

// Login handles POST /login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}
	if creds.Email == "" || creds.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	if _, err := h.AuthService.Login(r.Context(), creds); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeMessage(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		writeError(w, h.Logger, err, loginMessages)
		return
	}
	writeMessage(w, http.StatusOK, "Login successful")
}
