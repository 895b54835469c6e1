package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the single chat channel between one customer and the
// manager of one hall. At most one exists per (hall, customer) pair,
// regardless of which side initiated it.
type Conversation struct {
	ID        uuid.UUID
	HallID    uuid.UUID
	FromID    uuid.UUID
	ToID      uuid.UUID
	CreatedAt time.Time
}

// Involves reports whether the user is one of the two participants.
func (c *Conversation) Involves(userID uuid.UUID) bool {
	return c.FromID == userID || c.ToID == userID
}

// Counterpart returns the other participant of the conversation.
func (c *Conversation) Counterpart(userID uuid.UUID) uuid.UUID {
	if c.FromID == userID {
		return c.ToID
	}
	return c.FromID
}

// Participant is the sender identity attached to a delivered message.
type Participant struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role Role      `json:"role"`
}

// Message is immutable once created; ordering is by SentAt with id as
// tiebreaker.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Sender         Participant
	Text           string
	SentAt         time.Time
}
