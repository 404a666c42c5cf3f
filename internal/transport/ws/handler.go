// Package ws is the bidirectional session surface. A session announces its
// identity with a register event, after which the presence registry routes
// relay events to it until disconnect.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"huddle/internal/chat"
	"huddle/internal/identity"
	"huddle/internal/platform/metrics"
	"huddle/internal/presence"
	"huddle/internal/relay"
)

type EventNotifier interface {
	Notify(username string, event relay.Event)
}

type Handler struct {
	upgrader websocket.Upgrader
	presence *presence.Registry
	chat     *chat.Service
	notifier EventNotifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewHandler(registry *presence.Registry, chatSvc *chat.Service,
	notifier EventNotifier, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy belongs to the TLS-terminating proxy in front.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		presence: registry,
		chat:     chatSvc,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(conn)
	go client.writePump()
	h.readPump(r.Context(), client)
}

func (h *Handler) readPump(ctx context.Context, client *Client) {
	defer h.disconnect(client)

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame envelope
		if err := client.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("session read error", "session", client.ID(), "error", err)
			}
			return
		}
		h.dispatch(ctx, client, frame)
	}
}

func (h *Handler) dispatch(ctx context.Context, client *Client, frame envelope) {
	switch frame.Event {
	case eventRegister:
		var p registerPayload
		if !h.decode(frame, &p) {
			return
		}
		h.register(ctx, client, p)

	case eventChatMessage:
		var p chatMessagePayload
		if !h.decode(frame, &p) {
			return
		}
		h.chatMessage(ctx, client, p)

	case eventCallUser:
		var p callUserPayload
		if !h.decode(frame, &p) {
			return
		}
		h.notifier.Notify(identity.NormalizeUsername(p.To), relay.Event{
			Kind: relay.KindIncomingCall,
			Payload: relay.IncomingCallEvent{
				From:     client.Username(),
				RoomName: p.RoomName,
			},
		})

	case eventAnswerCall:
		var p answerCallPayload
		if !h.decode(frame, &p) {
			return
		}
		h.notifier.Notify(identity.NormalizeUsername(p.To), relay.Event{
			Kind: relay.KindCallAnswered,
			Payload: relay.CallAnsweredEvent{
				From:     client.Username(),
				RoomName: p.RoomName,
				Accepted: p.Accepted,
			},
		})

	default:
		h.logger.Debug("unknown session event", "event", frame.Event)
	}
}

// register binds the session to an identity. An unseen username becomes a
// first-class account via the registry's Ensure hook.
func (h *Handler) register(ctx context.Context, client *Client, p registerPayload) {
	username := identity.NormalizeUsername(p.Username)
	if username == "" {
		h.logger.Debug("register event without username", "session", client.ID())
		return
	}
	if err := h.presence.Register(ctx, username, client); err != nil {
		h.logger.Warn("session register failed", "user", username, "error", err)
		return
	}
	client.setUsername(username)
	h.metrics.SessionsActive.Set(float64(h.presence.Count()))
	h.logger.Info("session registered", "user", username, "session", client.ID())
}

// chatMessage sends through the same path as the HTTP surface. The sender is
// the session's registered identity, never the payload's claim.
func (h *Handler) chatMessage(ctx context.Context, client *Client, p chatMessagePayload) {
	from := client.Username()
	if from == "" {
		h.logger.Debug("chat message from unregistered session", "session", client.ID())
		return
	}
	to := identity.NormalizeUsername(p.To)
	if _, err := h.chat.Send(ctx, from, to, p.Text); err != nil {
		h.logger.Debug("session chat message rejected",
			"from", from, "to", to, "error", err)
	}
}

func (h *Handler) disconnect(client *Client) {
	if username := client.Username(); username != "" {
		if h.presence.UnregisterIfCurrent(username, client) {
			h.logger.Info("session unregistered", "user", username, "session", client.ID())
		}
		h.metrics.SessionsActive.Set(float64(h.presence.Count()))
	}
	client.close()
	client.conn.Close()
}

func (h *Handler) decode(frame envelope, dst any) bool {
	if err := json.Unmarshal(frame.Data, dst); err != nil {
		h.logger.Debug("malformed session payload", "event", frame.Event, "error", err)
		return false
	}
	return true
}
