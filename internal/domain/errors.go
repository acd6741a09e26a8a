// Package domain contains the core business entities for Zealine.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist or is soft-deleted.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same handle/email exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidHandle indicates the handle format is invalid.
	ErrInvalidHandle = errors.New("handle must be 3-30 lowercase letters, numbers, or underscores")

	// ===========================================
	// Upload Draft Errors
	// ===========================================

	// ErrInvalidMediaType indicates the MIME type is not allowed for the media kind.
	ErrInvalidMediaType = errors.New("media type is not allowed")

	// ErrFileTooLarge indicates the declared file size exceeds the per-kind ceiling.
	ErrFileTooLarge = errors.New("file size exceeds the allowed maximum")

	// ErrTooManyPendingUploads indicates the owner already has the maximum number
	// of concurrent pending drafts.
	ErrTooManyPendingUploads = errors.New("too many pending uploads")

	// ErrDraftNotFoundOrConsumed indicates the draft does not exist, belongs to
	// another owner, or has already been consumed by content creation.
	ErrDraftNotFoundOrConsumed = errors.New("upload draft not found or already consumed")

	// ErrUploadIncomplete indicates a multipart draft whose byte transfer has not finished.
	ErrUploadIncomplete = errors.New("upload is not complete")

	// ErrDraftExpired indicates the draft's expiration timestamp has elapsed.
	ErrDraftExpired = errors.New("upload draft has expired")

	// ErrFileNotFoundInStorage indicates no object exists at the draft's storage key.
	ErrFileNotFoundInStorage = errors.New("file not found in storage")

	// ErrInvalidPartNumber indicates the part index is outside [1, totalChunks].
	ErrInvalidPartNumber = errors.New("invalid part number")

	// ===========================================
	// Content Errors
	// ===========================================

	// ErrContentNotFound indicates the (contentType, contentId) pair resolves to nothing.
	ErrContentNotFound = errors.New("content not found")

	// ErrUnknownContentType indicates the discriminator is outside the closed enumeration.
	ErrUnknownContentType = errors.New("unknown content type")

	// ErrContentNotCommentable indicates the content type does not participate in comments.
	ErrContentNotCommentable = errors.New("content type does not support comments")

	// ErrContentNotShareable indicates the content type does not participate in shares.
	ErrContentNotShareable = errors.New("content type does not support shares")

	// ErrEmptyContent indicates a content body/caption failed validation.
	ErrEmptyContent = errors.New("content body must not be empty")

	// ErrInvalidPollOptions indicates a poll has fewer than two or more than ten options.
	ErrInvalidPollOptions = errors.New("polls require between 2 and 10 options")

	// ===========================================
	// Interaction Errors
	// ===========================================

	// ErrCommentNotFound indicates the requested comment does not exist.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrAlreadyReported indicates the user already reported this content item.
	ErrAlreadyReported = errors.New("content already reported by this user")

	// ErrNotificationNotFound indicates the requested notification does not exist.
	ErrNotificationNotFound = errors.New("notification not found")

	// ===========================================
	// Follow Graph Errors
	// ===========================================

	// ErrSelfFollow indicates a user attempted to follow themselves.
	ErrSelfFollow = errors.New("cannot follow yourself")

	// ErrAlreadyFollowing indicates the follow edge already exists.
	ErrAlreadyFollowing = errors.New("already following this user")

	// ErrNotFollowing indicates no follow edge exists to remove.
	ErrNotFollowing = errors.New("not following this user")

	// ===========================================
	// Rate Limiting Errors
	// ===========================================

	// ErrRateLimited indicates the caller exceeded the request rate.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context.
	Message string

	// Resource identifies the affected resource (e.g., draft id, content id).
	Resource string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Resource)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message, resource string) *DomainError {
	return &DomainError{
		Err:      err,
		Message:  message,
		Resource: resource,
	}
}

// WrapError wraps an error with domain context if it's not already a DomainError.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	return &DomainError{
		Err:     err,
		Message: message,
	}
}
