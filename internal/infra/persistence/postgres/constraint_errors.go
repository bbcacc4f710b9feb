package postgres

import (
	"strings"

	"simpletrader/internal/errors"

	"gorm.io/gorm"
)

// Helper functions for constraint error checking.
// TranslateError maps driver errors onto GORM sentinels; the message checks cover
// drivers that do not implement gorm.ErrorTranslator.

func isUniqueConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "23505") // PostgreSQL unique_violation error code
}

func isNotNullConstraintViolation(err error) bool {
	if err == nil {
		return false
	}

	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "null value") ||
		strings.Contains(errMsg, "not null constraint") ||
		strings.Contains(errMsg, "23502") // PostgreSQL not_null_violation error code
}
