package errors

import (
	stderrs "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// FromPG maps common pg failures to project error codes
// unique violations become DuplicateKey, missing rows become NotFound,
// everything else is a general DB error
func FromPG(err error, op string) error {
	if err == nil {
		return nil
	}
	if stderrs.Is(err, pgx.ErrNoRows) {
		return WithOp(NotFoundf("no rows"), op)
	}
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return WithOp(Wrapf(err, ErrorCodeDuplicateKey, "duplicate key"), op)
		case "23503": // foreign_key_violation
			return WithOp(Wrapf(err, ErrorCodeInvalidArgument, "foreign key violation"), op)
		}
	}
	return WithOp(Wrapf(err, ErrorCodeDB, "database error"), op)
}
