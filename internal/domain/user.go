// Package domain contains the core business entities for Zealine.
package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// User represents a registered account. FollowerCount and FollowingCount are
// denormalized caches of the edge counts; the edges are the source of truth
// and the cached values may drift.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Handle       string     `json:"handle"`
	DisplayName  string     `json:"display_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	Bio          string     `json:"bio,omitempty"`

	// Cached counters, advisory only.
	FollowerCount  int64 `json:"follower_count"`
	FollowingCount int64 `json:"following_count"`

	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewUser creates a User.
func NewUser(handle, displayName, email, passwordHash string) (*User, error) {
	if !ValidateHandle(handle) {
		return nil, ErrInvalidHandle
	}
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Handle:       handle,
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateHandle checks the handle format.
func ValidateHandle(handle string) bool {
	return handlePattern.MatchString(handle)
}

// IsDeleted reports whether the account has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}
