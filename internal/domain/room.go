package domain

import (
	"context"
	"errors"
	"time"
)

var ErrRoomNotFound = errors.New("room not found")

// Room represents a chat room. Private rooms carry a non-empty access
// code; everything else is public and visible in the lobby listing.
type Room struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Private     bool      `json:"private"`
	AccessCode  string    `json:"access_code,omitempty"`
	Highlighted bool      `json:"highlighted,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomRepository defines the interface for room data access
type RoomRepository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	GetByAccessCode(ctx context.Context, code string) (*Room, error)
	ListPublic(ctx context.Context) ([]*Room, error)
	CountPublic(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	DeletePublic(ctx context.Context) error
	SetHighlighted(ctx context.Context, id string) error
}
