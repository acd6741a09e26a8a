package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// draftRepository implements repository.DraftRepository for SQLite.
// Completed parts are stored as a JSON array in the parts column.
type draftRepository struct {
	db *DB
}

// NewDraftRepository creates a new SQLite upload draft repository.
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		draft.ID.String(),
		draft.OwnerID.String(),
		string(draft.Kind),
		draft.FileName,
		draft.FileSize,
		draft.MIMEType,
		draft.StorageKey,
		boolToInt(draft.IsMultipart),
		draft.SessionID,
		draft.ChunkSize,
		draft.TotalChunks,
		string(partsJSON),
		string(draft.Status),
		draft.ProcessingError,
		draft.MediaURL,
		formatTime(draft.ExpiresAt),
		formatNullTime(draft.UploadedAt),
		formatTime(draft.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create upload draft: %w", err)
	}

	return nil
}

// scanDraft scans one draft row.
func scanDraft(row interface{ Scan(...interface{}) error }) (*domain.UploadDraft, error) {
	draft := &domain.UploadDraft{}
	var id, ownerID, kind, parts, status, expiresAt, createdAt string
	var isMultipart int
	var uploadedAt sql.NullString

	err := row.Scan(
		&id,
		&ownerID,
		&kind,
		&draft.FileName,
		&draft.FileSize,
		&draft.MIMEType,
		&draft.StorageKey,
		&isMultipart,
		&draft.SessionID,
		&draft.ChunkSize,
		&draft.TotalChunks,
		&parts,
		&status,
		&draft.ProcessingError,
		&draft.MediaURL,
		&expiresAt,
		&uploadedAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	draft.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid draft id in database: %w", err)
	}
	draft.OwnerID, err = uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id in database: %w", err)
	}
	if err := json.Unmarshal([]byte(parts), &draft.Parts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parts: %w", err)
	}

	draft.Kind = domain.MediaKind(kind)
	draft.IsMultipart = isMultipart != 0
	draft.Status = domain.DraftStatus(status)
	draft.ExpiresAt = parseTime(expiresAt)
	draft.UploadedAt = parseNullTime(uploadedAt)
	draft.CreatedAt = parseTime(createdAt)

	return draft, nil
}

// GetByID retrieves a draft by ID.
func (r *draftRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadDraft, error) {
	query := `SELECT ` + draftColumns + ` FROM upload_drafts WHERE id = ?`

	draft, err := scanDraft(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get upload draft: %w", err)
	}

	return draft, nil
}

// CountPending counts drafts holding a slot against the owner's cap: in draft
// status, bytes not yet transferred, not expired.
func (r *draftRepository) CountPending(ctx context.Context, ownerID uuid.UUID, now time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM upload_drafts
		WHERE owner_id = ? AND status = ? AND uploaded_at IS NULL AND expires_at > ?
	`

	var count int64
	err := r.db.QueryRowContext(ctx, query,
		ownerID.String(),
		string(domain.DraftStatusDraft),
		formatTime(now),
	).Scan(&count)
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
		SET parts = ?, media_url = ?, uploaded_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(partsJSON),
		mediaURL,
		formatTime(uploadedAt),
		id.String(),
		string(domain.DraftStatusDraft),
	)
	if err != nil {
		return fmt.Errorf("failed to mark draft uploaded: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// MarkFailed transitions the draft to failed with an error message.
func (r *draftRepository) MarkFailed(ctx context.Context, id uuid.UUID, processingError string) error {
	query := `
		UPDATE upload_drafts
		SET status = ?, processing_error = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(domain.DraftStatusFailed),
		processingError,
		id.String(),
		string(domain.DraftStatusDraft),
	)
	if err != nil {
		return fmt.Errorf("failed to mark draft failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Consume atomically transitions an owner's draft from draft to uploaded.
// The conditional UPDATE is the idempotence barrier: a second consume of the
// same draft affects zero rows and surfaces as ErrNotFound.
func (r *draftRepository) Consume(ctx context.Context, id, ownerID uuid.UUID) error {
	query := `
		UPDATE upload_drafts
		SET status = ?
		WHERE id = ? AND owner_id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(domain.DraftStatusUploaded),
		id.String(),
		ownerID.String(),
		string(domain.DraftStatusDraft),
	)
	if err != nil {
		return fmt.Errorf("failed to consume draft: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
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
		WHERE status = ? AND expires_at <= ?
		ORDER BY expires_at
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query,
		string(domain.DraftStatusDraft),
		formatTime(now),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*domain.UploadDraft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, draft)
	}

	return drafts, rows.Err()
}
