package repository

import (
	"errors"

	"github.com/lib/pq"
	"github.com/yourorg/fleetrent/internal/domain"
)

// PostgreSQL error classes we translate into domain error kinds. Detection
// happens here, at the store boundary; nothing above this package inspects
// driver errors.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}

func storeErr(op string, err error) error {
	return &domain.StoreError{Op: op, Err: err}
}
