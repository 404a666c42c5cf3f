package httptransport

import (
	"net/http"

	"huddle/internal/audit"
	"huddle/internal/identity"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister creates an account. 409 on duplicate, 400 on missing
// fields.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	username := identity.NormalizeUsername(req.Username)

	acc, err := h.identity.Register(r.Context(), username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.UsersRegistered.Inc()
	h.audit.Emit(acc.Username, "", audit.ActionUserRegistered, "")
	h.snapshot.Request()
	writeJSON(w, http.StatusCreated, map[string]string{"username": acc.Username})
}

// handleLogin verifies credentials and returns a bearer token for the
// authenticated surface.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	username := identity.NormalizeUsername(req.Username)

	acc, err := h.identity.Verify(r.Context(), username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.tokens.Issue(acc.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"username": acc.Username,
		"token":    token,
	})
}
