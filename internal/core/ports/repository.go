package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/satrio28/hallbook/internal/core/domain"
)

// BookingRepository is the slot ledger: the single source of truth for which
// (hall, date, slot) keys are occupied.
type BookingRepository interface {
	// Insert persists a new booking. It must be atomic with respect to
	// concurrent inserts for the same (hall, date, slot) key: when an
	// active booking already occupies the key, it returns
	// domain.ErrSlotTaken and leaves the ledger unchanged.
	Insert(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	// ListActiveSlots returns the slots occupied by pending or approved
	// bookings for the hall on the calendar day containing day.
	ListActiveSlots(ctx context.Context, hallID uuid.UUID, day time.Time) ([]domain.TimeSlot, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	ListByRequester(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)
	ListByHall(ctx context.Context, hallID uuid.UUID) ([]domain.Booking, error)
}

// ConversationRepository is the conversation store for hall chats.
type ConversationRepository interface {
	// Find matches either ordering of (participantA, participantB).
	Find(ctx context.Context, hallID, participantA, participantB uuid.UUID) (*domain.Conversation, error)
	// Create inserts a conversation for the pair. If a concurrent create
	// won the race it returns the existing conversation instead.
	Create(ctx context.Context, hallID, fromID, toID uuid.UUID) (*domain.Conversation, error)
	AppendMessage(ctx context.Context, message *domain.Message) error
	// ListMessages returns the full history ordered by sent time, ties
	// broken by id.
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)
}

type HallRepository interface {
	GetByID(ctx context.Context, hallID uuid.UUID) (*domain.Hall, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}
