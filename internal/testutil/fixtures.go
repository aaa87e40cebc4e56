package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alivehamster/elliptical/internal/domain"
)

// Counter for generating unique ids
var idCounter atomic.Int64

// nextID generates a unique id for test fixtures
func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idCounter.Add(1))
}

// NewTestRoom creates a public room fixture.
func NewTestRoom(title string) *domain.Room {
	return &domain.Room{
		ID:        nextID("room"),
		Title:     title,
		CreatedAt: time.Now(),
	}
}

// NewTestPrivateRoom creates a private room fixture with the given code.
func NewTestPrivateRoom(title, code string) *domain.Room {
	return &domain.Room{
		ID:         nextID("room"),
		Title:      title,
		Private:    true,
		AccessCode: code,
		CreatedAt:  time.Now(),
	}
}

// NewTestMessage creates a message fixture in the given room.
func NewTestMessage(roomID, content string) *domain.Message {
	return &domain.Message{
		ID:        nextID("msg"),
		RoomID:    roomID,
		AuthorID:  nextID("conn"),
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewTestReport creates a report fixture for a (message, room) pair.
func NewTestReport(messageID, roomID, content string) *domain.Report {
	return &domain.Report{
		MessageID:  messageID,
		RoomID:     roomID,
		Content:    content,
		ReportedAt: time.Now(),
	}
}
