package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// pollRepository implements repository.PollRepository for SQLite.
// Options are stored as a JSON array in the options column.
type pollRepository struct {
	contentTable
}

// NewPollRepository creates a new SQLite poll repository.
func NewPollRepository(db *DB) repository.PollRepository {
	return &pollRepository{contentTable{db: db, table: "polls"}}
}

const pollColumns = `id, author_id, question, options, status, processing_error,
	closes_at, deleted_at, created_at, updated_at`

// Create creates a new poll.
func (r *pollRepository) Create(ctx context.Context, poll *domain.Poll) error {
	options, err := json.Marshal(poll.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal poll options: %w", err)
	}

	query := `
		INSERT INTO polls (id, author_id, question, options, status, processing_error, closes_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		poll.ID.String(),
		poll.AuthorID.String(),
		poll.Question,
		string(options),
		string(poll.Status),
		poll.ProcessingError,
		formatNullTime(poll.ClosesAt),
		formatTime(poll.CreatedAt),
		formatTime(poll.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create poll: %w", err)
	}

	return nil
}

// scanPoll scans one poll row.
func scanPoll(row interface{ Scan(...interface{}) error }) (*domain.Poll, error) {
	poll := &domain.Poll{}
	var id, authorID, options, status, createdAt, updatedAt string
	var closesAt, deletedAt sql.NullString

	err := row.Scan(
		&id,
		&authorID,
		&poll.Question,
		&options,
		&status,
		&poll.ProcessingError,
		&closesAt,
		&deletedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	poll.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid poll id in database: %w", err)
	}
	poll.AuthorID, err = uuid.Parse(authorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author id in database: %w", err)
	}
	if err := json.Unmarshal([]byte(options), &poll.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal poll options: %w", err)
	}

	poll.Status = domain.ContentStatus(status)
	poll.ClosesAt = parseNullTime(closesAt)
	poll.DeletedAt = parseNullTime(deletedAt)
	poll.CreatedAt = parseTime(createdAt)
	poll.UpdatedAt = parseTime(updatedAt)

	return poll, nil
}

// GetByID retrieves a poll by ID.
func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls WHERE id = ? AND deleted_at IS NULL`

	poll, err := scanPoll(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	return poll, nil
}

// GetSummary returns the kind-independent projection of a poll.
func (r *pollRepository) GetSummary(ctx context.Context, id uuid.UUID) (*domain.ContentSummary, error) {
	poll, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.ContentSummary{
		Type:      domain.ContentTypePoll,
		ID:        poll.ID,
		AuthorID:  poll.AuthorID,
		Status:    poll.Status,
		Title:     poll.Question,
		CreatedAt: poll.CreatedAt,
	}, nil
}

// ListByAuthor returns the author's polls, newest first.
func (r *pollRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, opts repository.ListOptions) ([]*domain.Poll, error) {
	query := `
		SELECT ` + pollColumns + `
		FROM polls
		WHERE author_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, authorID.String(), opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	var polls []*domain.Poll
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}

	return polls, rows.Err()
}
