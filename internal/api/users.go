package api

import (
	"log/slog"
	"net/http"
)

// UsersHandler handles user listing.
type UsersHandler struct {
	Credentials CredentialStore
	Logger      *slog.Logger
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.Credentials.ListUsernames(r.Context())
	if err != nil {
		storeError(w, r, h.Logger, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	jsonResponse(w, http.StatusOK, names)
}
