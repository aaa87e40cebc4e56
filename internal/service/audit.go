package service

import (
	"context"

	"github.com/alivehamster/elliptical/internal/domain"
)

// AuditPublisher forwards moderation activity to the out-of-band audit
// channel so external tooling can follow admin actions and reports.
// Implementations must not block the event path on broker failures.
type AuditPublisher interface {
	PublishAdminAction(ctx context.Context, command, roomID, messageID string) error
	PublishReport(ctx context.Context, report *domain.Report) error
}
