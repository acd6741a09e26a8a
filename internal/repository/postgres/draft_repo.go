package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// draftRepository implements repository.DraftRepository for PostgreSQL.
// Completed parts are stored in a jsonb column.
type draftRepository struct {
	db *DB
}

// NewDraftRepository creates a new PostgreSQL upload draft repository.
func NewDraftRepository(db *DB) repository.DraftRepository {
	return &draftRepository{db: db}
}

const draftColumns = `id, owner_id, kind, file_name, file_size, mime_type, storage_key,
	is_multipart, session_id, chunk_size, total_chunks, parts, status,
	processing_error, media_url, expires_at, uploaded_at, created_at`

// Create creates a new upload draft.
func (r *draftRepository) Create(ctx context.Context, draft *domain.UploadDraft) error {
	partsJSON, err := json.Marshal(draft.Parts)
	if err != nil {
		return fmt.Errorf("failed to marshal parts: %w", err)
	}

	query := `
		INSERT INTO upload_drafts (` + draftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		draft.ID,
		draft.OwnerID,
		string(draft.Kind),
		draft.FileName,
		draft.FileSize,
		draft.MIMEType,
		draft.StorageKey,
		draft.IsMultipart,
		draft.SessionID,
		draft.ChunkSize,
		draft.TotalChunks,
		partsJSON,
		string(draft.Status),
		draft.ProcessingError,
		draft.MediaURL,
		draft.ExpiresAt,
		draft.UploadedAt,
		draft.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create upload draft: %w", err)
	}

	return nil
}

// GetByID retrieves a draft by ID.
func (r *draftRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadDraft, error) {
	query := `SELECT ` + draftColumns + ` FROM upload_drafts WHERE id = $1`

	draft := &domain.UploadDraft{}
	var kind, status string
	var partsJSON []byte

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&draft.ID,
		&draft.OwnerID,
		&kind,
		&draft.FileName,
		&draft.FileSize,
		&draft.MIMEType,
		&draft.StorageKey,
		&draft.IsMultipart,
		&draft.SessionID,
		&draft.ChunkSize,
		&draft.TotalChunks,
		&partsJSON,
		&status,
		&draft.ProcessingError,
		&draft.MediaURL,
		&draft.ExpiresAt,
		&draft.UploadedAt,
		&draft.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get upload draft: %w", err)
	}

	if err := json.Unmarshal(partsJSON, &draft.Parts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parts: %w", err)
	}
	draft.Kind = domain.MediaKind(kind)
	draft.Status = domain.DraftStatus(status)

	return draft, nil
}

// CountPending counts drafts holding a slot against the owner's cap.
func (r *draftRepository) CountPending(ctx context.Context, ownerID uuid.UUID, now time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM upload_drafts
		WHERE owner_id = $1 AND status = $2 AND uploaded_at IS NULL AND expires_at > $3
	`

	var count int64
	err := r.db.Pool.QueryRow(ctx, query, ownerID, string(domain.DraftStatusDraft), now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending drafts: %w", err)
	}

	return count, nil
}

// MarkUploaded records byte-transfer completion.
func (r *draftRepository) MarkUploaded(ctx context.Context, id uuid.UUID, parts []domain.UploadedPart, mediaURL string, uploadedAt time.Time) error {
	partsJSON, err := json.Marshal(parts)
	if err != nil {
		return fmt.Errorf("failed to marshal parts: %w", err)
	}

	query := `
		UPDATE upload_drafts
		SET parts = $1, media_url = $2, uploaded_at = $3
		WHERE id = $4 AND status = $5
	`

	tag, err := r.db.Pool.Exec(ctx, query, partsJSON, mediaURL, uploadedAt, id, string(domain.DraftStatusDraft))
	if err != nil {
		return fmt.Errorf("failed to mark draft uploaded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// MarkFailed transitions the draft to failed with an error message.
func (r *draftRepository) MarkFailed(ctx context.Context, id uuid.UUID, processingError string) error {
	query := `
		UPDATE upload_drafts
		SET status = $1, processing_error = $2
		WHERE id = $3 AND status = $4
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		string(domain.DraftStatusFailed), processingError, id, string(domain.DraftStatusDraft))
	if err != nil {
		return fmt.Errorf("failed to mark draft failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Consume atomically transitions an owner's draft from draft to uploaded.
// A second consume affects zero rows and surfaces as ErrNotFound.
func (r *draftRepository) Consume(ctx context.Context, id, ownerID uuid.UUID) error {
	query := `
		UPDATE upload_drafts
		SET status = $1
		WHERE id = $2 AND owner_id = $3 AND status = $4
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		string(domain.DraftStatusUploaded), id, ownerID, string(domain.DraftStatusDraft))
	if err != nil {
		return fmt.Errorf("failed to consume draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListExpiredPending returns drafts whose claim window elapsed while still in
// draft status, for the cleanup sweep.
func (r *draftRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*domain.UploadDraft, error) {
	query := `
		SELECT ` + draftColumns + `
		FROM upload_drafts
		WHERE status = $1 AND expires_at <= $2
		ORDER BY expires_at
		LIMIT $3
	`

	rows, err := r.db.Pool.Query(ctx, query, string(domain.DraftStatusDraft), now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*domain.UploadDraft
	for rows.Next() {
		draft := &domain.UploadDraft{}
		var kind, status string
		var partsJSON []byte

		err := rows.Scan(
			&draft.ID,
			&draft.OwnerID,
			&kind,
			&draft.FileName,
			&draft.FileSize,
			&draft.MIMEType,
			&draft.StorageKey,
			&draft.IsMultipart,
			&draft.SessionID,
			&draft.ChunkSize,
			&draft.TotalChunks,
			&partsJSON,
			&status,
			&draft.ProcessingError,
			&draft.MediaURL,
			&draft.ExpiresAt,
			&draft.UploadedAt,
			&draft.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}

		if err := json.Unmarshal(partsJSON, &draft.Parts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal parts: %w", err)
		}
		draft.Kind = domain.MediaKind(kind)
		draft.Status = domain.DraftStatus(status)

		drafts = append(drafts, draft)
	}

	return drafts, rows.Err()
}
