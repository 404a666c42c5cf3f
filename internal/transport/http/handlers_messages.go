package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"huddle/internal/identity"
	"huddle/internal/platform/middleware"
	pkgerrors "huddle/pkg/errors"
)

// handleContacts lists every friend and past correspondent of the
// authenticated user, with conversation previews and unread counts.
func (h *Handler) handleContacts(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsername(r.Context())
	summaries, err := h.messages.Summaries(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleConversation returns the message history with one contact. 403 when
// the contact is not a friend and no history exists either.
func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsername(r.Context())
	contact := identity.NormalizeUsername(chi.URLParam(r, "contactId"))
	if contact == "" {
		writeError(w, pkgerrors.ErrMissingField)
		return
	}

	acc, err := h.identity.Find(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	if !acc.Friends.Has(contact) {
		writeError(w, pkgerrors.ErrNotFriends)
		return
	}

	msgs := h.messages.Conversation(r.Context(), username, contact)
	writeJSON(w, http.StatusOK, msgs)
}

type sendMessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsername(r.Context())
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.chat.Send(r.Context(), username, identity.NormalizeUsername(req.To), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": msg,
	})
}

type callTokenRequest struct {
	RoomName string `json:"roomName"`
}

// handleCallToken mints a short-lived room credential for the authenticated
// user via the external issuer collaborator.
func (h *Handler) handleCallToken(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsername(r.Context())
	var req callTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.RoomName == "" {
		writeError(w, pkgerrors.ErrMissingField)
		return
	}

	token, err := h.roomTokens.Issue(username, req.RoomName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
