package postgres

import (
	"crm/shared/constant"
	"errors"

	"github.com/lib/pq"
)

// IsUniqueViolation reports whether err was raised by a unique constraint.
func IsUniqueViolation(err error) bool {
	return hasCode(err, constant.PqErrorCodeUniqueViolation)
}

// IsForeignKeyViolation reports whether err was raised by a foreign key constraint.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, constant.PqErrorCodeFkViolation)
}

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}

	return false
}
