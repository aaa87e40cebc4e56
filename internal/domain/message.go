package domain

import (
	"context"
	"time"
)

// SystemAuthorID is the author recorded for admin-injected messages.
const SystemAuthorID = "system"

// Message represents a chat message scoped to one room. AuthorID is the
// ephemeral connection id of the sender, or SystemAuthorID for
// admin-injected highlights.
type Message struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	AuthorID    string    `json:"author_id"`
	Content     string    `json:"content"`
	Highlighted bool      `json:"highlighted,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	// ListByRoom returns every message in the room in ascending
	// creation order, the replay contract for joins.
	ListByRoom(ctx context.Context, roomID string) ([]*Message, error)
	Delete(ctx context.Context, id, roomID string) error
}
