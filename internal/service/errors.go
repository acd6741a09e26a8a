package service

import "errors"

// Service-level errors. Domain errors from the domain package pass through
// services unchanged; these cover validation and infrastructure concerns the
// domain layer has no vocabulary for.
var (
	// Validation errors

	// ErrInvalidFileName indicates the declared file name is missing or malformed.
	ErrInvalidFileName = errors.New("file name is required")

	// ErrInvalidFileSize indicates the declared file size is zero or negative.
	ErrInvalidFileSize = errors.New("file size must be positive")

	// ErrDeclaredSizeMismatch indicates the file on disk does not match the
	// size declared when the upload was started.
	ErrDeclaredSizeMismatch = errors.New("file size does not match declared size")

	// ErrNotMediaBacked indicates the content type cannot be created from an
	// upload draft.
	ErrNotMediaBacked = errors.New("content type is not media-backed")

	// ErrInvalidReportReason indicates the report reason is not a known category.
	ErrInvalidReportReason = errors.New("invalid report reason")

	// Authentication errors

	// ErrInvalidCredentials indicates the handle/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Upload errors

	// ErrUploadInProgress indicates another transfer already holds the draft lock.
	ErrUploadInProgress = errors.New("upload already in progress for this draft")

	// Generic errors

	// ErrInternalError indicates an internal server error.
	ErrInternalError = errors.New("internal server error")
)
