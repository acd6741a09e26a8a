package postgres

import (
	"context"
	"fmt"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// reportRepository implements repository.ReportRepository for PostgreSQL.
type reportRepository struct {
	refTable
}

// NewReportRepository creates a new PostgreSQL content report repository.
func NewReportRepository(db *DB) repository.ReportRepository {
	return &reportRepository{refTable{db: db, table: "content_reports"}}
}

// Upsert inserts the report if the (ref, reporter) pair is absent.
// inserted=false means the user already reported this item.
func (r *reportRepository) Upsert(ctx context.Context, report *domain.ContentReport) (bool, error) {
	query := `
		INSERT INTO content_reports (id, content_type, content_id, model_name, reporter_id, reason, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (content_type, content_id, reporter_id) DO NOTHING
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		report.ID,
		string(report.Ref.Type),
		report.Ref.ID,
		report.ModelName,
		report.ReporterID,
		string(report.Reason),
		report.Details,
		report.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert report: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListByRef returns the reports against a content item, newest first.
func (r *reportRepository) ListByRef(ctx context.Context, ref domain.ContentRef, opts repository.ListOptions) ([]*domain.ContentReport, error) {
	query := `
		SELECT id, content_type, content_id, model_name, reporter_id, reason, details, created_at
		FROM content_reports
		WHERE content_type = $1 AND content_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Pool.Query(ctx, query, string(ref.Type), ref.ID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.ContentReport
	for rows.Next() {
		report := &domain.ContentReport{}
		var contentType, reason string
		if err := rows.Scan(&report.ID, &contentType, &report.Ref.ID, &report.ModelName, &report.ReporterID, &reason, &report.Details, &report.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		report.Ref.Type = domain.ContentType(contentType)
		report.Reason = domain.ReportReason(reason)
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// CountByRef counts the reports against a content item.
func (r *reportRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	query := `SELECT COUNT(*) FROM content_reports WHERE content_type = $1 AND content_id = $2`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, string(ref.Type), ref.ID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}

	return count, nil
}
