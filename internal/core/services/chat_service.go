package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satrio28/hallbook/internal/core/domain"
	"github.com/satrio28/hallbook/internal/core/ports"
)

// ChatService owns conversation resolution and message persistence for hall
// chats. Broadcast is the session manager's job; nothing here touches
// connections.
type ChatService struct {
	convs ports.ConversationRepository
	halls ports.HallRepository
	users ports.UserRepository
	log   *zap.Logger
}

func NewChatService(convs ports.ConversationRepository, halls ports.HallRepository, users ports.UserRepository, log *zap.Logger) *ChatService {
	return &ChatService{
		convs: convs,
		halls: halls,
		users: users,
		log:   log,
	}
}

// OpenConversation resolves (or lazily creates) the conversation between a
// customer and a hall's manager, returning it with its full ordered history.
// A customer is always paired with the hall's manager. The hall's manager
// must name the customer via withUserID, since one hall holds a conversation
// per customer. Repeated calls from either side resolve to the same
// conversation.
func (s *ChatService) OpenConversation(ctx context.Context, hallID uuid.UUID, caller domain.Identity, withUserID uuid.UUID) (*domain.Conversation, []domain.Message, error) {
	hall, err := s.halls.GetByID(ctx, hallID)
	if err != nil {
		return nil, nil, err
	}

	customerID, managerID, err := s.resolvePair(ctx, hall, caller, withUserID)
	if err != nil {
		return nil, nil, err
	}

	conv, err := s.convs.Find(ctx, hallID, customerID, managerID)
	if err != nil {
		if err != domain.ErrConversationNotFound {
			return nil, nil, fmt.Errorf("find conversation: %w", err)
		}
		conv, err = s.convs.Create(ctx, hallID, customerID, managerID)
		if err != nil {
			return nil, nil, fmt.Errorf("create conversation: %w", err)
		}
	}

	history, err := s.convs.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list messages: %w", err)
	}

	return conv, history, nil
}

// PostMessage validates, routes, and persists one chat message. It returns
// the stored message, its conversation, and the resolved recipient so the
// session manager can broadcast only after the append committed.
func (s *ChatService) PostMessage(ctx context.Context, hallID uuid.UUID, sender domain.Identity, text string, toUserID uuid.UUID) (*domain.Message, *domain.Conversation, uuid.UUID, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, uuid.Nil, domain.ErrEmptyMessage
	}

	hall, err := s.halls.GetByID(ctx, hallID)
	if err != nil {
		return nil, nil, uuid.Nil, err
	}

	var conv *domain.Conversation
	var recipientID uuid.UUID

	switch sender.Role {
	case domain.RoleCustomer:
		// Recipient is always the hall's manager; first message creates
		// the conversation.
		recipientID = hall.ManagerID
		conv, err = s.convs.Find(ctx, hallID, sender.UserID, recipientID)
		if err == domain.ErrConversationNotFound {
			conv, err = s.convs.Create(ctx, hallID, sender.UserID, recipientID)
		}
		if err != nil {
			return nil, nil, uuid.Nil, fmt.Errorf("resolve conversation: %w", err)
		}

	case domain.RoleManager:
		// Managers reply into existing conversations of halls they own
		// and must name the customer explicitly.
		if hall.ManagerID != sender.UserID || toUserID == uuid.Nil {
			return nil, nil, uuid.Nil, domain.ErrUnauthorized
		}
		recipientID = toUserID
		conv, err = s.convs.Find(ctx, hallID, toUserID, sender.UserID)
		if err == domain.ErrConversationNotFound {
			return nil, nil, uuid.Nil, domain.ErrUnauthorized
		}
		if err != nil {
			return nil, nil, uuid.Nil, fmt.Errorf("resolve conversation: %w", err)
		}

	default:
		return nil, nil, uuid.Nil, domain.ErrUnauthorized
	}

	message := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Sender: domain.Participant{
			ID:   sender.UserID,
			Name: sender.Name,
			Role: sender.Role,
		},
		Text:   text,
		SentAt: time.Now().UTC(),
	}

	if err := s.convs.AppendMessage(ctx, message); err != nil {
		return nil, nil, uuid.Nil, fmt.Errorf("append message: %w", err)
	}

	s.log.Debug("message stored",
		zap.String("conversation_id", conv.ID.String()),
		zap.String("hall_id", hallID.String()))

	return message, conv, recipientID, nil
}

func (s *ChatService) resolvePair(ctx context.Context, hall *domain.Hall, caller domain.Identity, withUserID uuid.UUID) (customerID, managerID uuid.UUID, err error) {
	switch caller.Role {
	case domain.RoleCustomer:
		return caller.UserID, hall.ManagerID, nil
	case domain.RoleManager:
		if hall.ManagerID != caller.UserID || withUserID == uuid.Nil {
			return uuid.Nil, uuid.Nil, domain.ErrUnauthorized
		}
		if _, err := s.users.GetByID(ctx, withUserID); err != nil {
			return uuid.Nil, uuid.Nil, err
		}
		return withUserID, caller.UserID, nil
	default:
		return uuid.Nil, uuid.Nil, domain.ErrUnauthorized
	}
}
