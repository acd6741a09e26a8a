package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// followRepository implements repository.FollowRepository for SQLite.
// The follows table holds (user_id, follower_id) edges and is the source of
// truth for all counts; the users table counters are a denormalized cache.
type followRepository struct {
	db *DB
}

// NewFollowRepository creates a new SQLite follow repository.
func NewFollowRepository(db *DB) repository.FollowRepository {
	return &followRepository{db: db}
}

// CreateEdge inserts a follow edge.
func (r *followRepository) CreateEdge(ctx context.Context, edge *domain.FollowEdge) error {
	query := `INSERT INTO follows (user_id, follower_id, created_at) VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		edge.UserID.String(),
		edge.FollowerID.String(),
		formatTime(edge.CreatedAt),
	)
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
	query := `DELETE FROM follows WHERE user_id = ? AND follower_id = ?`

	result, err := r.db.ExecContext(ctx, query, userID.String(), followerID.String())
	if err != nil {
		return fmt.Errorf("failed to delete follow edge: %w", err)
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

// EdgeExists checks whether followerID follows userID.
func (r *followRepository) EdgeExists(ctx context.Context, userID, followerID uuid.UUID) (bool, error) {
	query := `SELECT COUNT(*) FROM follows WHERE user_id = ? AND follower_id = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID.String(), followerID.String()).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check follow edge: %w", err)
	}

	return count > 0, nil
}

// CountFollowers counts edges pointing at userID.
func (r *followRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM follows WHERE user_id = ?`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, userID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}

	return count, nil
}

// CountFollowing counts edges originating from userID.
func (r *followRepository) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM follows WHERE follower_id = ?`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, userID.String()).Scan(&count); err != nil {
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
		WHERE f.user_id = ? AND u.deleted_at IS NULL
	`
	args := []interface{}{userID.String()}

	if opts.HandleFilter != "" {
		query += ` AND u.handle LIKE ?`
		args = append(args, "%"+strings.ToLower(opts.HandleFilter)+"%")
	}

	query += ` ORDER BY f.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	return r.queryEntries(ctx, query, args...)
}

// ListFollowing returns the users userID follows, newest edge first.
func (r *followRepository) ListFollowing(ctx context.Context, userID uuid.UUID, opts repository.FollowListOptions) ([]*domain.FollowListEntry, error) {
	query := `
		SELECT u.id, u.handle, u.display_name, u.avatar_url, f.created_at
		FROM follows f
		JOIN users u ON u.id = f.user_id
		WHERE f.follower_id = ? AND u.deleted_at IS NULL
	`
	args := []interface{}{userID.String()}

	if opts.HandleFilter != "" {
		query += ` AND u.handle LIKE ?`
		args = append(args, "%"+strings.ToLower(opts.HandleFilter)+"%")
	}

	query += ` ORDER BY f.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	return r.queryEntries(ctx, query, args...)
}

func (r *followRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]*domain.FollowListEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.FollowListEntry
	for rows.Next() {
		entry := &domain.FollowListEntry{}
		var id, followedAt string
		if err := rows.Scan(&id, &entry.Handle, &entry.DisplayName, &entry.AvatarURL, &followedAt); err != nil {
			return nil, fmt.Errorf("failed to scan follow entry: %w", err)
		}
		entry.UserID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid user id in database: %w", err)
		}
		entry.FollowedAt = parseTime(followedAt)
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
		WHERE f.user_id = ? AND u.deleted_at IS NULL
	`

	return r.queryHandles(ctx, query, userID.String())
}

// AllFollowingHandles returns the handles of every user userID follows.
func (r *followRepository) AllFollowingHandles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	query := `
		SELECT u.handle
		FROM follows f
		JOIN users u ON u.id = f.user_id
		WHERE f.follower_id = ? AND u.deleted_at IS NULL
	`

	return r.queryHandles(ctx, query, userID.String())
}

func (r *followRepository) queryHandles(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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

// FollowedSet reports which of candidateIDs the viewer follows. The IN clause
// is bounded by the caller's page size, never the whole graph.
func (r *followRepository) FollowedSet(ctx context.Context, viewerID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(candidateIDs))
	args := make([]interface{}, 0, len(candidateIDs)+1)
	args = append(args, viewerID.String())
	for i, id := range candidateIDs {
		placeholders[i] = "?"
		args = append(args, id.String())
	}

	query := fmt.Sprintf(
		`SELECT user_id FROM follows WHERE follower_id = ? AND user_id IN (%s)`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query followed set: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan followed id: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid user id in database: %w", err)
		}
		result[parsed] = true
	}

	return result, rows.Err()
}
