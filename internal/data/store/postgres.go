package store

import (
	"context"
	"errors"

	"admin-backend/internal/data/entity"
	"admin-backend/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type pgExecutor struct {
	db database.PgxIface
}

func (e pgExecutor) query(ctx context.Context, sql string, args ...any) (rows, error) {
	return e.db.Query(ctx, sql, args...)
}

func (e pgExecutor) exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := e.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

// NewPostgresStore returns a Store backed by the pgx pool.
func NewPostgresStore[T any, PT entity.RecordPtr[T]](db database.PgxIface) *SQLStore[T, PT] {
	d := postgresDialect
	d.mapError = mapPgError
	return newSQLStore[T, PT](pgExecutor{db: db}, d)
}
