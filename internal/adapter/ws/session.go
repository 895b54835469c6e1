package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/satrio28/hallbook/internal/core/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	outboxSize     = 64
)

// Session is one authenticated websocket connection. Ephemeral: room
// membership lives in the hub and is torn down on disconnect.
type Session struct {
	handler  *Handler
	conn     *websocket.Conn
	identity domain.Identity
	outbox   chan Frame
	stopOnce sync.Once
	log      *zap.Logger
}

func newSession(h *Handler, conn *websocket.Conn, identity domain.Identity) *Session {
	return &Session{
		handler:  h,
		conn:     conn,
		identity: identity,
		outbox:   make(chan Frame, outboxSize),
		log:      h.log.With(zap.String("user_id", identity.UserID.String())),
	}
}

func (s *Session) userID() uuid.UUID { return s.identity.UserID }

// deliver queues a frame without blocking the hub. A full outbox means the
// client has stopped draining; the frame is dropped and the connection will
// be reaped by the ping/pong deadline.
func (s *Session) deliver(f Frame) {
	select {
	case s.outbox <- f:
	default:
		s.log.Warn("outbox full, dropping frame", zap.String("type", f.Type))
	}
}

// shutdown is called exactly once by the hub during Unregister.
func (s *Session) shutdown() {
	s.stopOnce.Do(func() {
		close(s.outbox)
	})
}

func (s *Session) readPump() {
	defer func() {
		s.handler.hub.Unregister(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.deliver(errorFrame("malformed frame"))
			continue
		}

		s.handler.dispatch(context.Background(), s, env)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.outbox:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
