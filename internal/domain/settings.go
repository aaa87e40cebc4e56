package domain

import "context"

// SettingsRepository persists the mutable admin settings. Only the
// admin password survives restarts; the rest of the moderation state is
// seeded from configuration.
type SettingsRepository interface {
	// EnsurePassword returns the stored admin password, inserting
	// fallback as the initial value when none exists yet.
	EnsurePassword(ctx context.Context, fallback string) (string, error)
	SetPassword(ctx context.Context, password string) error
}
