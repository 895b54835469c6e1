package ws

import (
	"encoding/json"
	"time"

	"github.com/satrio28/hallbook/internal/core/domain"
)

// Event types exchanged with clients.
const (
	EventJoinHallChat = "join_hall_chat"
	EventSendMessage  = "send_message"
	EventChatHistory  = "chat_history"
	EventNewMessage   = "new_message"
	EventError        = "error"
)

// Envelope is an inbound client frame; Data is decoded per event type.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Frame is an outbound server frame.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type joinPayload struct {
	HallID     string `json:"hallId"`
	WithUserID string `json:"withUserId,omitempty"`
}

type sendPayload struct {
	HallID   string `json:"hallId"`
	Text     string `json:"text"`
	ToUserID string `json:"toUserId,omitempty"`
}

type messagePayload struct {
	MessageID string             `json:"messageId"`
	Text      string             `json:"text"`
	From      domain.Participant `json:"from"`
	SentAt    time.Time          `json:"sentAt"`
}

type historyPayload struct {
	ChatID   string           `json:"chatId"`
	HallID   string           `json:"hallId"`
	Messages []messagePayload `json:"messages"`
}

type newMessagePayload struct {
	ChatID  string         `json:"chatId"`
	HallID  string         `json:"hallId"`
	Message messagePayload `json:"message"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func toMessagePayload(m *domain.Message) messagePayload {
	return messagePayload{
		MessageID: m.ID.String(),
		Text:      m.Text,
		From:      m.Sender,
		SentAt:    m.SentAt,
	}
}

func errorFrame(message string) Frame {
	return Frame{Type: EventError, Data: errorPayload{Message: message}}
}
