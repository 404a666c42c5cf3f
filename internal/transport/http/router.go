// Package httptransport is the thin request/response layer. Handlers decode,
// normalize identity keys once, delegate to domain services and translate
// errors; business rules live below.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"huddle/internal/audit"
	"huddle/internal/chat"
	"huddle/internal/identity"
	"huddle/internal/message"
	"huddle/internal/platform/metrics"
	"huddle/internal/platform/middleware"
	"huddle/internal/relationship"
	"huddle/internal/roomtoken"
)

// TokenIssuer mints bearer tokens at login.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// SnapshotRequester triggers an async durable snapshot after a mutation.
type SnapshotRequester interface {
	Request()
}

type Handler struct {
	identity      identity.Store
	relationships *relationship.Service
	messages      *message.Log
	chat          *chat.Service
	tokens        TokenIssuer
	roomTokens    roomtoken.Issuer
	snapshot      SnapshotRequester
	audit         audit.Emitter
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewHandler(
	ids identity.Store,
	relationships *relationship.Service,
	messages *message.Log,
	chatSvc *chat.Service,
	tokens TokenIssuer,
	roomTokens roomtoken.Issuer,
	snapshot SnapshotRequester,
	emitter audit.Emitter,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		identity:      ids,
		relationships: relationships,
		messages:      messages,
		chat:          chatSvc,
		tokens:        tokens,
		roomTokens:    roomTokens,
		snapshot:      snapshot,
		audit:         emitter,
		metrics:       m,
		logger:        logger,
	}
}

// NewRouter wires all public endpoints.
func NewRouter(h *Handler, validator middleware.TokenValidator, ws http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)

	r.Get("/friends", h.handleListFriends)
	r.Post("/friends/request", h.handleFriendRequest)
	r.Post("/friends/accept", h.handleFriendAccept)
	r.Post("/friends/add", h.handleFriendAdd)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, h.logger))
		r.Get("/contacts", h.handleContacts)
		r.Get("/messages/{contactId}", h.handleConversation)
		r.Post("/messages", h.handleSendMessage)
		r.Post("/calls/token", h.handleCallToken)
	})

	if ws != nil {
		r.Handle("/ws", ws)
	}
	return r
}
