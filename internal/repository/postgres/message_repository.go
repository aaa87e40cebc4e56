package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alivehamster/elliptical/internal/domain"
)

// MessageRepository implements domain.MessageRepository for PostgreSQL
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new PostgreSQL message repository
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message. The caller assigns the id.
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (id, room_id, author_id, content, is_highlighted)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		message.ID,
		message.RoomID,
		message.AuthorID,
		message.Content,
		message.Highlighted,
	).Scan(&message.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByRoom retrieves all messages of a room, oldest first
func (r *MessageRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.Message, error) {
	query := `
		SELECT id, room_id, author_id, content, is_highlighted, created_at
		FROM messages
		WHERE room_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		msg := &domain.Message{}
		err := rows.Scan(
			&msg.ID,
			&msg.RoomID,
			&msg.AuthorID,
			&msg.Content,
			&msg.Highlighted,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

// Delete removes a single message inside a room. Deleting an id that is
// not present is not an error.
func (r *MessageRepository) Delete(ctx context.Context, id, roomID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM messages WHERE id = $1 AND room_id = $2`, id, roomID,
	); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
