package dbutil

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	appErr "github.com/xxxsen/magicauth/internal/pkg/errors"
)

// Finalize rebinds a gendry-built query's placeholders to postgres $n form.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}

func IsConflict(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// Wrap classifies a driver error. Missing rows become ErrNotFound, unique
// violations ErrConflict and anything else ErrStorageUnavailable.
func Wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return appErr.ErrNotFound
	case IsConflict(err):
		return appErr.ErrConflict
	default:
		return fmt.Errorf("%s: %w: %v", op, appErr.ErrStorageUnavailable, err)
	}
}
