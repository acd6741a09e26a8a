// Package domain contains the core business entities for Zealine.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// FollowEdge is a directed edge in the social graph: FollowerID follows
// UserID. Unique per ordered pair; self-edges are rejected at the service
// layer. Edges are the source of truth for counts.
type FollowEdge struct {
	// UserID is the user being followed.
	UserID uuid.UUID `json:"user_id"`

	// FollowerID is the user doing the following.
	FollowerID uuid.UUID `json:"follower_id"`

	// CreatedAt is when the edge was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewFollowEdge creates a FollowEdge.
func NewFollowEdge(userID, followerID uuid.UUID) *FollowEdge {
	return &FollowEdge{
		UserID:     userID,
		FollowerID: followerID,
		CreatedAt:  time.Now().UTC(),
	}
}

// FollowCounts holds edge-derived follower/following counts for one user.
type FollowCounts struct {
	UserID         uuid.UUID `json:"user_id"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
}

// FollowListEntry is one row of a follower/following listing, annotated with
// whether the requesting viewer follows the entry's user.
type FollowListEntry struct {
	UserID         uuid.UUID `json:"user_id"`
	Handle         string    `json:"handle"`
	DisplayName    string    `json:"display_name"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	FollowedAt     time.Time `json:"followed_at"`
	ViewerFollows  bool      `json:"viewer_follows"`
}
