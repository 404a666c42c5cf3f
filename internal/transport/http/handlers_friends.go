package httptransport

import (
	"net/http"

	"huddle/internal/identity"
	pkgerrors "huddle/pkg/errors"
)

type friendPairRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (req *friendPairRequest) normalize() error {
	req.From = identity.NormalizeUsername(req.From)
	req.To = identity.NormalizeUsername(req.To)
	if req.From == "" || req.To == "" {
		return pkgerrors.ErrMissingField
	}
	return nil
}

// handleListFriends returns the friend graph view for ?username=.
func (h *Handler) handleListFriends(w http.ResponseWriter, r *http.Request) {
	username := identity.NormalizeUsername(r.URL.Query().Get("username"))
	if username == "" {
		writeError(w, pkgerrors.ErrMissingField)
		return
	}
	rels, err := h.relationships.List(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rels)
}

func (h *Handler) handleFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req friendPairRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.normalize(); err != nil {
		writeError(w, err)
		return
	}

	info, err := h.relationships.Request(r.Context(), req.From, req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]any{"ok": true}
	if info != "" {
		resp["info"] = info
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleFriendAccept(w http.ResponseWriter, r *http.Request) {
	var req friendPairRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.normalize(); err != nil {
		writeError(w, err)
		return
	}

	if err := h.relationships.Accept(r.Context(), req.From, req.To); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleFriendAdd(w http.ResponseWriter, r *http.Request) {
	var req friendPairRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.normalize(); err != nil {
		writeError(w, err)
		return
	}

	friendsOfFrom, friendsOfTo, err := h.relationships.DirectAdd(r.Context(), req.From, req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"friendsOfFrom": friendsOfFrom,
		"friendsOfTo":   friendsOfTo,
	})
}
