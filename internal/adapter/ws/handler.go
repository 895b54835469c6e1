package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/satrio28/hallbook/internal/core/domain"
	"github.com/satrio28/hallbook/internal/core/ports"
	"github.com/satrio28/hallbook/internal/core/services"
)

// Handler upgrades connections, authenticates them once against the identity
// gate, and relays chat events between sessions and the chat service.
type Handler struct {
	hub      *Hub
	chat     *services.ChatService
	verifier ports.TokenVerifier
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewHandler(hub *Hub, chat *services.ChatService, verifier ports.TokenVerifier, log *zap.Logger) *Handler {
	return &Handler{
		hub:      hub,
		chat:     chat,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log,
	}
}

// Handle is the websocket entry point. Credentials travel in the "token"
// query parameter or an Authorization header. An invalid credential gets a
// single error event and an immediate close; no room membership is ever
// granted.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	identity, err := h.verifier.Verify(bearerToken(r))
	if err != nil {
		conn.WriteJSON(errorFrame("Authentication error: " + err.Error()))
		conn.Close()
		return
	}

	s := newSession(h, conn, identity)
	h.hub.Register(s)

	go s.writePump()
	go s.readPump()
}

func (h *Handler) dispatch(ctx context.Context, s *Session, env Envelope) {
	switch env.Type {
	case EventJoinHallChat:
		h.onJoin(ctx, s, env.Data)
	case EventSendMessage:
		h.onSend(ctx, s, env.Data)
	default:
		s.deliver(errorFrame("unknown event: " + env.Type))
	}
}

// onJoin resolves the caller's conversation for the hall, delivers its full
// history to the caller only, then adds the session to the hall room.
func (h *Handler) onJoin(ctx context.Context, s *Session, data json.RawMessage) {
	var payload joinPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.deliver(errorFrame("malformed join_hall_chat payload"))
		return
	}

	hallID, err := uuid.Parse(payload.HallID)
	if err != nil {
		s.deliver(errorFrame("invalid hallId"))
		return
	}

	withUserID := uuid.Nil
	if payload.WithUserID != "" {
		if withUserID, err = uuid.Parse(payload.WithUserID); err != nil {
			s.deliver(errorFrame("invalid withUserId"))
			return
		}
	}

	conv, history, err := h.chat.OpenConversation(ctx, hallID, s.identity, withUserID)
	if err != nil {
		s.deliver(errorFrame(clientMessage(err)))
		return
	}

	messages := make([]messagePayload, 0, len(history))
	for i := range history {
		messages = append(messages, toMessagePayload(&history[i]))
	}

	s.deliver(Frame{Type: EventChatHistory, Data: historyPayload{
		ChatID:   conv.ID.String(),
		HallID:   hallID.String(),
		Messages: messages,
	}})

	h.hub.JoinRoom(hallID, s)
}

// onSend persists the message, then broadcasts it to the hall room and the
// recipient's personal channel. Broadcast strictly follows the successful
// append: a failed persistence emits an error to the caller only.
func (h *Handler) onSend(ctx context.Context, s *Session, data json.RawMessage) {
	var payload sendPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.deliver(errorFrame("malformed send_message payload"))
		return
	}

	hallID, err := uuid.Parse(payload.HallID)
	if err != nil {
		s.deliver(errorFrame("invalid hallId"))
		return
	}

	toUserID := uuid.Nil
	if payload.ToUserID != "" {
		if toUserID, err = uuid.Parse(payload.ToUserID); err != nil {
			s.deliver(errorFrame("invalid toUserId"))
			return
		}
	}

	message, conv, recipientID, err := h.chat.PostMessage(ctx, hallID, s.identity, payload.Text, toUserID)
	if err != nil {
		s.deliver(errorFrame(clientMessage(err)))
		return
	}

	h.hub.BroadcastMessage(hallID, recipientID, Frame{Type: EventNewMessage, Data: newMessagePayload{
		ChatID:  conv.ID.String(),
		HallID:  hallID.String(),
		Message: toMessagePayload(message),
	}})
}

// clientMessage maps domain errors to the transient error event text;
// anything unclassified is surfaced generically.
func clientMessage(err error) string {
	switch {
	case domain.IsValidationError(err), domain.IsNotFoundError(err), domain.IsAuthError(err):
		return err.Error()
	default:
		return "internal error"
	}
}

func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}
