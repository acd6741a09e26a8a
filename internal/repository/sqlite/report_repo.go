package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// reportRepository implements repository.ReportRepository for SQLite.
type reportRepository struct {
	refTable
}

// NewReportRepository creates a new SQLite content report repository.
func NewReportRepository(db *DB) repository.ReportRepository {
	return &reportRepository{refTable{db: db, table: "content_reports"}}
}

// Upsert inserts the report if the (ref, reporter) pair is absent.
// inserted=false means the user already reported this item.
func (r *reportRepository) Upsert(ctx context.Context, report *domain.ContentReport) (bool, error) {
	query := `
		INSERT INTO content_reports (id, content_type, content_id, model_name, reporter_id, reason, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_type, content_id, reporter_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		report.ID.String(),
		string(report.Ref.Type),
		report.Ref.ID.String(),
		report.ModelName,
		report.ReporterID.String(),
		string(report.Reason),
		report.Details,
		formatTime(report.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// ListByRef returns the reports against a content item, newest first.
func (r *reportRepository) ListByRef(ctx context.Context, ref domain.ContentRef, opts repository.ListOptions) ([]*domain.ContentReport, error) {
	query := `
		SELECT id, content_type, content_id, model_name, reporter_id, reason, details, created_at
		FROM content_reports
		WHERE content_type = ? AND content_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, string(ref.Type), ref.ID.String(), opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.ContentReport
	for rows.Next() {
		report := &domain.ContentReport{}
		var id, contentType, contentID, reporterID, reason, createdAt string
		if err := rows.Scan(&id, &contentType, &contentID, &report.ModelName, &reporterID, &reason, &report.Details, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		report.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid report id in database: %w", err)
		}
		report.Ref.Type = domain.ContentType(contentType)
		report.Ref.ID, err = uuid.Parse(contentID)
		if err != nil {
			return nil, fmt.Errorf("invalid content id in database: %w", err)
		}
		report.ReporterID, err = uuid.Parse(reporterID)
		if err != nil {
			return nil, fmt.Errorf("invalid reporter id in database: %w", err)
		}
		report.Reason = domain.ReportReason(reason)
		report.CreatedAt = parseTime(createdAt)
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// CountByRef counts the reports against a content item.
func (r *reportRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	query := `SELECT COUNT(*) FROM content_reports WHERE content_type = ? AND content_id = ?`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, string(ref.Type), ref.ID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}

	return count, nil
}
