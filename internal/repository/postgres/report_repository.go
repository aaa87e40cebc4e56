package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alivehamster/elliptical/internal/domain"
)

// ReportRepository implements domain.ReportRepository for PostgreSQL
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report. Concurrent duplicates trip the unique
// constraint; callers treat that as already reported.
func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	query := `
		INSERT INTO reports (message_id, room_id, content)
		VALUES ($1, $2, $3)
		RETURNING reported_at
	`
	err := r.db.QueryRowContext(ctx, query,
		report.MessageID,
		report.RoomID,
		report.Content,
	).Scan(&report.ReportedAt)

	if err != nil {
		if IsDuplicateReport(err) {
			return domain.ErrDuplicateReport
		}
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// Find retrieves the report for a (message, room) pair if one exists
func (r *ReportRepository) Find(ctx context.Context, messageID, roomID string) (*domain.Report, error) {
	query := `
		SELECT message_id, room_id, content, reported_at
		FROM reports
		WHERE message_id = $1 AND room_id = $2
	`
	report := &domain.Report{}
	err := r.db.QueryRowContext(ctx, query, messageID, roomID).Scan(
		&report.MessageID,
		&report.RoomID,
		&report.Content,
		&report.ReportedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}
	return report, nil
}

// List retrieves all reports, newest first
func (r *ReportRepository) List(ctx context.Context) ([]*domain.Report, error) {
	query := `
		SELECT message_id, room_id, content, reported_at
		FROM reports
		ORDER BY reported_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.Report, 0)
	for rows.Next() {
		report := &domain.Report{}
		err := rows.Scan(
			&report.MessageID,
			&report.RoomID,
			&report.Content,
			&report.ReportedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return reports, nil
}
