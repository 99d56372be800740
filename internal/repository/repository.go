package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nyumba-homes/marketplace/internal/database"
)

// undefinedFunction is the PostgreSQL SQLSTATE for a missing function.
const undefinedFunction = "42883"

// ErrFunctionNotFound is returned when a server-side procedure the caller
// relies on is not installed in the database.
var ErrFunctionNotFound = errors.New("database function not found")

// queryOne runs a single-row query and maps it onto T by column name.
// It returns nil, nil when no row matched.
func queryOne[T any](ctx context.Context, db *database.Database, sql string, args ...interface{}) (*T, error) {
	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

// queryAll runs a query and maps every row onto T by column name.
// The result is never nil.
func queryAll[T any](ctx context.Context, db *database.Database, sql string, args ...interface{}) ([]T, error) {
	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

func isUndefinedFunction(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedFunction
}
