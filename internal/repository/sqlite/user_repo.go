package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// userRepository implements repository.UserRepository for SQLite.
type userRepository struct {
	db *DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, handle, display_name, email, password_hash, avatar_url, bio,
	follower_count, following_count, deleted_at, created_at, updated_at`

// Create creates a new user.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, handle, display_name, email, password_hash, avatar_url, bio,
			follower_count, following_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID.String(),
		user.Handle,
		user.DisplayName,
		user.Email,
		user.PasswordHash,
		user.AvatarURL,
		user.Bio,
		user.FollowerCount,
		user.FollowingCount,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: handle already taken", domain.ErrUserAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// scanUser scans one user row.
func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	user := &domain.User{}
	var id, createdAt, updatedAt string
	var deletedAt sql.NullString

	err := row.Scan(
		&id,
		&user.Handle,
		&user.DisplayName,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.Bio,
		&user.FollowerCount,
		&user.FollowingCount,
		&deletedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in database: %w", err)
	}
	user.DeletedAt = parseNullTime(deletedAt)
	user.CreatedAt = parseTime(createdAt)
	user.UpdatedAt = parseTime(updatedAt)

	return user, nil
}

// GetByID retrieves a user by ID. Soft-deleted users are excluded.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND deleted_at IS NULL`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetByHandle retrieves a user by handle.
func (r *userRepository) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE handle = ? AND deleted_at IS NULL`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, handle))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by handle: %w", err)
	}

	return user, nil
}

// ExistsByHandle checks if a user with the given handle exists.
func (r *userRepository) ExistsByHandle(ctx context.Context, handle string) (bool, error) {
	query := `SELECT COUNT(*) FROM users WHERE handle = ? AND deleted_at IS NULL`

	var count int
	if err := r.db.QueryRowContext(ctx, query, handle).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check handle existence: %w", err)
	}

	return count > 0, nil
}

// Update updates an existing user's profile fields.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET display_name = ?, email = ?, password_hash = ?, avatar_url = ?, bio = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	user.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		user.DisplayName,
		user.Email,
		user.PasswordHash,
		user.AvatarURL,
		user.Bio,
		formatTime(user.UpdatedAt),
		user.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// SoftDelete marks a user as deleted without removing the record.
func (r *userRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

	now := formatTime(time.Now().UTC())
	result, err := r.db.ExecContext(ctx, query, now, now, id.String())
	if err != nil {
		return fmt.Errorf("failed to soft delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// SearchByHandle returns users whose handle contains the query, case-insensitive.
func (r *userRepository) SearchByHandle(ctx context.Context, query string, opts repository.ListOptions) ([]*domain.User, error) {
	sqlQuery := `
		SELECT ` + userColumns + `
		FROM users
		WHERE handle LIKE ? AND deleted_at IS NULL
		ORDER BY handle
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, sqlQuery, "%"+query+"%", opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// AdjustFollowerCount adds delta to the cached follower counter.
func (r *userRepository) AdjustFollowerCount(ctx context.Context, id uuid.UUID, delta int64) error {
	query := `UPDATE users SET follower_count = MAX(0, follower_count + ?) WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, delta, id.String()); err != nil {
		return fmt.Errorf("failed to adjust follower count: %w", err)
	}
	return nil
}

// AdjustFollowingCount adds delta to the cached following counter.
func (r *userRepository) AdjustFollowingCount(ctx context.Context, id uuid.UUID, delta int64) error {
	query := `UPDATE users SET following_count = MAX(0, following_count + ?) WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, delta, id.String()); err != nil {
		return fmt.Errorf("failed to adjust following count: %w", err)
	}
	return nil
}
