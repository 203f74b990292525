package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/stockmate/internal/auth"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	Credentials CredentialStore
	JWTSecret   string
	TokenTTL    time.Duration
	Logger      *slog.Logger
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Register handles POST /api/users.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Credentials.AddUser(r.Context(), req.Username, req.Password); err != nil {
		storeError(w, r, h.Logger, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{"message": "user registered"})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.Credentials.ValidateCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		storeError(w, r, h.Logger, err)
		return
	}
	if !ok {
		h.Logger.WarnContext(r.Context(), "login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	user, err := h.Credentials.GetUser(r.Context(), req.Username)
	if err != nil {
		storeError(w, r, h.Logger, err)
		return
	}
	if user == nil {
		// Removed between the check and the lookup.
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Username, h.TokenTTL)
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "failed to generate token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	h.Logger.InfoContext(r.Context(), "user logged in", "user", user.Username)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token})
}
