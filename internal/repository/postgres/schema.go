package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create the relay's tables when missing. Message
// cleanup on room deletion relies on the foreign key cascade here, not
// on application-level transactions; report dedup relies on the unique
// index.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id UUID PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		is_private BOOLEAN NOT NULL DEFAULT FALSE,
		access_code VARCHAR(255),
		is_highlighted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY,
		room_id UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		author_id VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		is_highlighted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id SERIAL PRIMARY KEY,
		message_id UUID NOT NULL,
		room_id UUID NOT NULL,
		content TEXT NOT NULL,
		reported_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT reports_message_room_key UNIQUE (message_id, room_id)
	)`,
	`CREATE TABLE IF NOT EXISTS admin_settings (
		id INT PRIMARY KEY DEFAULT 1,
		password VARCHAR(255) NOT NULL,
		CONSTRAINT admin_settings_single_row CHECK (id = 1)
	)`,
}

// EnsureSchema creates the tables the relay needs if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
