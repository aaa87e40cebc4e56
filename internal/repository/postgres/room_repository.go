package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alivehamster/elliptical/internal/domain"
)

// RoomRepository implements domain.RoomRepository for PostgreSQL
type RoomRepository struct {
	db *sql.DB
}

// NewRoomRepository creates a new PostgreSQL room repository
func NewRoomRepository(db *sql.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create inserts a new room. The caller assigns the id.
func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (id, title, is_private, access_code)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		room.ID,
		room.Title,
		room.Private,
		room.AccessCode,
	).Scan(&room.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// GetByID retrieves a room by id
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	query := `
		SELECT id, title, is_private, COALESCE(access_code, ''), is_highlighted, created_at
		FROM rooms
		WHERE id = $1
	`
	return r.scanRoom(r.db.QueryRowContext(ctx, query, id))
}

// GetByAccessCode resolves a private room by exact access-code match
func (r *RoomRepository) GetByAccessCode(ctx context.Context, code string) (*domain.Room, error) {
	query := `
		SELECT id, title, is_private, COALESCE(access_code, ''), is_highlighted, created_at
		FROM rooms
		WHERE access_code = $1
	`
	return r.scanRoom(r.db.QueryRowContext(ctx, query, code))
}

func (r *RoomRepository) scanRoom(row *sql.Row) (*domain.Room, error) {
	room := &domain.Room{}
	err := row.Scan(
		&room.ID,
		&room.Title,
		&room.Private,
		&room.AccessCode,
		&room.Highlighted,
		&room.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan room: %w", err)
	}
	return room, nil
}

// ListPublic retrieves all public rooms in insertion order
func (r *RoomRepository) ListPublic(ctx context.Context) ([]*domain.Room, error) {
	query := `
		SELECT id, title, is_private, COALESCE(access_code, ''), is_highlighted, created_at
		FROM rooms
		WHERE is_private = FALSE
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]*domain.Room, 0)
	for rows.Next() {
		room := &domain.Room{}
		err := rows.Scan(
			&room.ID,
			&room.Title,
			&room.Private,
			&room.AccessCode,
			&room.Highlighted,
			&room.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms: %w", err)
	}
	return rooms, nil
}

// CountPublic counts public rooms, the figure checked against the room cap
func (r *RoomRepository) CountPublic(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rooms WHERE is_private = FALSE`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return count, nil
}

// Delete removes a room; its messages go with it via the FK cascade
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

// DeletePublic removes every public room (the purge command)
func (r *RoomRepository) DeletePublic(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE is_private = FALSE`); err != nil {
		return fmt.Errorf("failed to purge rooms: %w", err)
	}
	return nil
}

// SetHighlighted flags a room as featured
func (r *RoomRepository) SetHighlighted(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET is_highlighted = TRUE WHERE id = $1`, id,
	); err != nil {
		return fmt.Errorf("failed to highlight room: %w", err)
	}
	return nil
}
