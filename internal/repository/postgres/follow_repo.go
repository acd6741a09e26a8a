package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// followRepository implements repository.FollowRepository for PostgreSQL.
// The follows table holds (user_id, follower_id) edges and is the source of
// truth for all counts; the users table counters are a denormalized cache.
type followRepository struct {
	db *DB
}

// NewFollowRepository creates a new PostgreSQL follow repository.
func NewFollowRepository(db *DB) repository.FollowRepository {
	return &followRepository{db: db}
}

// CreateEdge inserts a follow edge.
func (r *followRepository) CreateEdge(ctx context.Context, edge *domain.FollowEdge) error {
	query := `INSERT INTO follows (user_id, follower_id, created_at) VALUES ($1, $2, $3)`

	_, err := r.db.Pool.Exec(ctx, query, edge.UserID, edge.FollowerID, edge.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create follow edge: %w", err)
	}

	return nil
}

// DeleteEdge removes an edge.
func (r *followRepository) DeleteEdge(ctx context.Context, userID, followerID uuid.UUID) error {
	query := `DELETE FROM follows WHERE user_id = $1 AND follower_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, userID, followerID)
	if err != nil {
		return fmt.Errorf("failed to delete follow edge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// EdgeExists checks whether followerID follows userID.
func (r *followRepository) EdgeExists(ctx context.Context, userID, followerID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = $1 AND follower_id = $2)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, userID, followerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check follow edge: %w", err)
	}

	return exists, nil
}

// CountFollowers counts edges pointing at userID.
func (r *followRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM follows WHERE user_id = $1`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}

	return count, nil
}

// CountFollowing counts edges originating from userID.
func (r *followRepository) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM follows WHERE follower_id = $1`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}

	return count, nil
}

// ListFollowers returns the users following userID, newest edge first.
func (r *followRepository) ListFollowers(ctx context.Context, userID uuid.UUID, opts repository.FollowListOptions) ([]*domain.FollowListEntry, error) {
	query := `
		SELECT u.id, u.handle, u.display_name, u.avatar_url, f.created_at
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.user_id = $1 AND u.deleted_at IS NULL
	`
	args := []interface{}{userID}

	if opts.HandleFilter != "" {
		query += ` AND u.handle ILIKE $2`
		args = append(args, "%"+opts.HandleFilter+"%")
		query += ` ORDER BY f.created_at DESC LIMIT $3 OFFSET $4`
	} else {
		query += ` ORDER BY f.created_at DESC LIMIT $2 OFFSET $3`
	}
	args = append(args, opts.Limit, opts.Offset)

	return r.queryEntries(ctx, query, args...)
}

// ListFollowing returns the users userID follows, newest edge first.
func (r *followRepository) ListFollowing(ctx context.Context, userID uuid.UUID, opts repository.FollowListOptions) ([]*domain.FollowListEntry, error) {
	query := `
		SELECT u.id, u.handle, u.display_name, u.avatar_url, f.created_at
		FROM follows f
		JOIN users u ON u.id = f.user_id
		WHERE f.follower_id = $1 AND u.deleted_at IS NULL
	`
	args := []interface{}{userID}

	if opts.HandleFilter != "" {
		query += ` AND u.handle ILIKE $2`
		args = append(args, "%"+opts.HandleFilter+"%")
		query += ` ORDER BY f.created_at DESC LIMIT $3 OFFSET $4`
	} else {
		query += ` ORDER BY f.created_at DESC LIMIT $2 OFFSET $3`
	}
	args = append(args, opts.Limit, opts.Offset)

	return r.queryEntries(ctx, query, args...)
}

func (r *followRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]*domain.FollowListEntry, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.FollowListEntry
	for rows.Next() {
		entry := &domain.FollowListEntry{}
		if err := rows.Scan(&entry.UserID, &entry.Handle, &entry.DisplayName, &entry.AvatarURL, &entry.FollowedAt); err != nil {
			return nil, fmt.Errorf("failed to scan follow entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// AllFollowerHandles returns the handles of every follower of userID.
func (r *followRepository) AllFollowerHandles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	query := `
		SELECT u.handle
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.user_id = $1 AND u.deleted_at IS NULL
	`

	return r.queryHandles(ctx, query, userID)
}

// AllFollowingHandles returns the handles of every user userID follows.
func (r *followRepository) AllFollowingHandles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	query := `
		SELECT u.handle
		FROM follows f
		JOIN users u ON u.id = f.user_id
		WHERE f.follower_id = $1 AND u.deleted_at IS NULL
	`

	return r.queryHandles(ctx, query, userID)
}

func (r *followRepository) queryHandles(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list handles: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var handle string
		if err := rows.Scan(&handle); err != nil {
			return nil, fmt.Errorf("failed to scan handle: %w", err)
		}
		handles = append(handles, handle)
	}

	return handles, rows.Err()
}

// FollowedSet reports which of candidateIDs the viewer follows. The ANY array
// is bounded by the caller's page size, never the whole graph.
func (r *followRepository) FollowedSet(ctx context.Context, viewerID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return result, nil
	}

	query := `SELECT user_id FROM follows WHERE follower_id = $1 AND user_id = ANY($2)`

	rows, err := r.db.Pool.Query(ctx, query, viewerID, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query followed set: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan followed id: %w", err)
		}
		result[id] = true
	}

	return result, rows.Err()
}
