package sqlite

import (
	"database/sql"
	"errors"
	"strings"
)

// modernc.org/sqlite surfaces constraint failures as plain error strings, so
// classification is by message rather than error code.

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
