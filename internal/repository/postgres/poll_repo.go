package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// pollRepository implements repository.PollRepository for PostgreSQL.
// Options are stored as a jsonb array.
type pollRepository struct {
	contentTable
}

// NewPollRepository creates a new PostgreSQL poll repository.
func NewPollRepository(db *DB) repository.PollRepository {
	return &pollRepository{contentTable{db: db, table: "polls"}}
}

const pollColumns = `id, author_id, question, options, status, processing_error,
	closes_at, deleted_at, created_at, updated_at`

// Create creates a new poll.
func (r *pollRepository) Create(ctx context.Context, poll *domain.Poll) error {
	query := `
		INSERT INTO polls (id, author_id, question, options, status, processing_error, closes_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		poll.ID,
		poll.AuthorID,
		poll.Question,
		poll.Options,
		string(poll.Status),
		poll.ProcessingError,
		poll.ClosesAt,
		poll.CreatedAt,
		poll.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create poll: %w", err)
	}

	return nil
}

// scanPoll scans one poll row.
func scanPoll(row interface{ Scan(...interface{}) error }) (*domain.Poll, error) {
	poll := &domain.Poll{}
	var status string

	err := row.Scan(
		&poll.ID,
		&poll.AuthorID,
		&poll.Question,
		&poll.Options,
		&status,
		&poll.ProcessingError,
		&poll.ClosesAt,
		&poll.DeletedAt,
		&poll.CreatedAt,
		&poll.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	poll.Status = domain.ContentStatus(status)

	return poll, nil
}

// GetByID retrieves a poll by ID.
func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls WHERE id = $1 AND deleted_at IS NULL`

	poll, err := scanPoll(r.db.Pool.QueryRow(ctx, query, id))
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
		WHERE author_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, authorID, opts.Limit, opts.Offset)
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
