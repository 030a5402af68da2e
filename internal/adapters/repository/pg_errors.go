package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

// ErrReferenceMissing is an ErrHabitNotFound: the habit went away between
// the ownership check and the insert.
var ErrReferenceMissing = fmt.Errorf("referenced habit does not exist: %w", domain.ErrHabitNotFound)

// translatePgError maps constraint violations from either driver.
func translatePgError(err error) error {
	code := ""
	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgErr):
		code = pgErr.Code
	case errors.As(err, &pqErr):
		code = string(pqErr.Code)
	}

	switch code {
	case "23503":
		return ErrReferenceMissing
	default:
		return err
	}
}
