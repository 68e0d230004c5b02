package repositories

import (
	"context"
	"fmt"

	"bookhub/internal/database"
	"bookhub/internal/models"

	"go.uber.org/zap"
)

// messageRepository implements MessageRepository with PostgreSQL
type messageRepository struct {
	*BaseRepository
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *database.Manager, logger *zap.Logger) MessageRepository {
	return &messageRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const messageSelect = `
	SELECT
		m.id, m.sender_id, m.receiver_id, m.body, m.is_read, m.created_at,
		su.username AS sender_username, ru.username AS receiver_username
	FROM messages m
	INNER JOIN users su ON su.id = m.sender_id
	INNER JOIN users ru ON ru.id = m.receiver_id`

// Create inserts a new message
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, is_read, created_at`

	err := r.QueryRowContext(ctx, query,
		message.SenderID, message.ReceiverID, message.Body,
	).Scan(&message.ID, &message.IsRead, &message.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	r.GetLogger().Info("Message created",
		zap.Int64("message_id", message.ID),
		zap.Int64("sender_id", message.SenderID),
		zap.Int64("receiver_id", message.ReceiverID),
	)
	return nil
}

// ListForUser returns every message the user sent or received, oldest first
func (r *messageRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Message, error) {
	query := messageSelect + `
		WHERE m.sender_id = $1 OR m.receiver_id = $1
		ORDER BY m.created_at ASC, m.id ASC`
	return r.queryMessages(ctx, query, userID)
}

// ListConversation returns the two-party thread oldest first
func (r *messageRepository) ListConversation(ctx context.Context, userID, otherID int64) ([]*models.Message, error) {
	query := messageSelect + `
		WHERE (m.sender_id = $1 AND m.receiver_id = $2)
		   OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at ASC, m.id ASC`
	return r.queryMessages(ctx, query, userID, otherID)
}

// MarkRead flags messages from otherID addressed to readerID as read
func (r *messageRepository) MarkRead(ctx context.Context, readerID, otherID int64) error {
	_, err := r.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE`,
		readerID, otherID)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

func (r *messageRepository) queryMessages(ctx context.Context, query string, args ...interface{}) ([]*models.Message, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		var message models.Message
		err := rows.Scan(
			&message.ID, &message.SenderID, &message.ReceiverID,
			&message.Body, &message.IsRead, &message.CreatedAt,
			&message.SenderUsername, &message.ReceiverUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &message)
	}
	return messages, rows.Err()
}
