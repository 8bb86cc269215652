package database

import (
	"strings"
)

// IsUniqueViolation reports whether err came from a UNIQUE constraint or
// unique index. When columns are given, the violation must name one of them,
// e.g. "users.email".
func IsUniqueViolation(err error, columns ...string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if len(columns) == 0 {
		return true
	}
	for _, col := range columns {
		if strings.Contains(msg, col) {
			return true
		}
	}
	return false
}
