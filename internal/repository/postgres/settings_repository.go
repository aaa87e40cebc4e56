package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// SettingsRepository implements domain.SettingsRepository for PostgreSQL
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new PostgreSQL settings repository
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// EnsurePassword returns the persisted admin password, seeding the
// single settings row with fallback when the table is empty.
func (r *SettingsRepository) EnsurePassword(ctx context.Context, fallback string) (string, error) {
	var password string
	err := r.db.QueryRowContext(ctx,
		`SELECT password FROM admin_settings WHERE id = 1`,
	).Scan(&password)

	switch {
	case err == sql.ErrNoRows:
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO admin_settings (id, password) VALUES (1, $1)`, fallback,
		); err != nil {
			return "", fmt.Errorf("failed to seed admin password: %w", err)
		}
		return fallback, nil

	case err != nil:
		return "", fmt.Errorf("failed to read admin password: %w", err)
	}

	return password, nil
}

// SetPassword persists a changed admin password
func (r *SettingsRepository) SetPassword(ctx context.Context, password string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE admin_settings SET password = $1 WHERE id = 1`, password,
	); err != nil {
		return fmt.Errorf("failed to update admin password: %w", err)
	}
	return nil
}
