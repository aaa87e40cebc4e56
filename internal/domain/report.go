package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrReportNotFound = errors.New("report not found")
	// ErrDuplicateReport is returned when an insert loses the race
	// against another report for the same (message, room) pair.
	ErrDuplicateReport = errors.New("report already exists")
)

// Report flags a message for moderator review. At most one report
// exists per (message id, room id) pair; duplicates are no-ops.
type Report struct {
	MessageID  string    `json:"msgid"`
	RoomID     string    `json:"roomid"`
	Content    string    `json:"message"`
	ReportedAt time.Time `json:"time"`
}

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	Find(ctx context.Context, messageID, roomID string) (*Report, error)
	// List returns all reports, newest first.
	List(ctx context.Context) ([]*Report, error)
}
