package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/satrio28/hallbook/internal/core/domain"
)

type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Find matches either ordering of the participant pair.
func (r *ConversationRepository) Find(ctx context.Context, hallID, participantA, participantB uuid.UUID) (*domain.Conversation, error) {
	query := `
	SELECT id, hall_id, from_id, to_id, created_at
	FROM conversations
	WHERE hall_id = $1
	  AND ((from_id = $2 AND to_id = $3) OR (from_id = $3 AND to_id = $2))
	`

	var c domain.Conversation
	err := r.db.QueryRowContext(ctx, query, hallID, participantA, participantB).Scan(
		&c.ID, &c.HallID, &c.FromID, &c.ToID, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}

	return &c, nil
}

// Create inserts the conversation. A unique index on the unordered pair
// (hall_id, participants) backs it; if a concurrent create won the race the
// violation is resolved by re-reading the winner's row.
func (r *ConversationRepository) Create(ctx context.Context, hallID, fromID, toID uuid.UUID) (*domain.Conversation, error) {
	conv := &domain.Conversation{
		ID:        uuid.New(),
		HallID:    hallID,
		FromID:    fromID,
		ToID:      toID,
		CreatedAt: time.Now().UTC(),
	}

	query := `
	INSERT INTO conversations (id, hall_id, from_id, to_id, created_at)
	VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, conv.ID, conv.HallID, conv.FromID, conv.ToID, conv.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return r.Find(ctx, hallID, fromID, toID)
		}
		return nil, fmt.Errorf("failed to insert conversation: %w", err)
	}

	return conv, nil
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, m *domain.Message) error {
	query := `
	INSERT INTO messages (id, conversation_id, sender_id, text, sent_at)
	VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, m.ID, m.ConversationID, m.Sender.ID, m.Text, m.SentAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	query := `
	SELECT m.id, m.conversation_id, m.text, m.sent_at, u.id, u.name, u.role
	FROM messages m
	JOIN users u ON u.id = m.sender_id
	WHERE m.conversation_id = $1
	ORDER BY m.sent_at ASC, m.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&m.Text,
			&m.SentAt,
			&m.Sender.ID,
			&m.Sender.Name,
			&m.Sender.Role,
		); err != nil {
			return nil, err
		}

		messages = append(messages, m)
	}

	return messages, rows.Err()
}
