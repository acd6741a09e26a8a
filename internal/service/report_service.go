package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/metrics"
	"github.com/prn-tf/zealine/internal/repository"
)

// maxReportDetailsLength bounds the free-text details field.
const maxReportDetailsLength = 1000

// ReportService handles user reports against content.
type ReportService struct {
	reports  repository.ReportRepository
	resolver *ContentResolver
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewReportService creates a new report service.
func NewReportService(
	reports repository.ReportRepository,
	resolver *ContentResolver,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ReportService {
	return &ReportService{
		reports:  reports,
		resolver: resolver,
		metrics:  m,
		logger:   logger.With().Str("service", "report").Logger(),
	}
}

// ===== Service Methods =====

// Report files a report against a content item. A user may report an item
// once; repeat reports are rejected.
func (s *ReportService) Report(ctx context.Context, ref domain.ContentRef, reporterID uuid.UUID, reason domain.ReportReason, details string) (*domain.ContentReport, error) {
	if !reason.IsValid() {
		return nil, ErrInvalidReportReason
	}
	details = strings.TrimSpace(details)
	if len(details) > maxReportDetailsLength {
		details = details[:maxReportDetailsLength]
	}

	if _, err := s.resolver.Resolve(ctx, ref); err != nil {
		return nil, err
	}

	report := domain.NewContentReport(ref, reporterID, reason, details)
	inserted, err := s.reports.Upsert(ctx, report)
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to upsert report")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !inserted {
		return nil, domain.ErrAlreadyReported
	}

	if s.metrics != nil {
		s.metrics.Interactions.WithLabelValues("report").Inc()
	}

	s.logger.Info().
		Str("report_id", report.ID.String()).
		Str("content_type", string(ref.Type)).
		Str("content_id", ref.ID.String()).
		Str("reason", string(reason)).
		Msg("Content reported")

	return report, nil
}

// List returns a page of reports against one item, newest first.
func (s *ReportService) List(ctx context.Context, ref domain.ContentRef, input ListInput) ([]*domain.ContentReport, error) {
	reports, err := s.reports.ListByRef(ctx, ref, input.options())
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to list reports")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return reports, nil
}

// Count returns the report count for one item.
func (s *ReportService) Count(ctx context.Context, ref domain.ContentRef) (int64, error) {
	count, err := s.reports.CountByRef(ctx, ref)
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to count reports")
		return 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return count, nil
}
