package store

import (
	"context"
	"database/sql"
	"errors"

	"admin-backend/internal/data/entity"

	"github.com/mattn/go-sqlite3"
)

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() {
	_ = r.Rows.Close()
}

type sqliteExecutor struct {
	db *sql.DB
}

func (e sqliteExecutor) query(ctx context.Context, q string, args ...any) (rows, error) {
	r, err := e.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{Rows: r}, nil
}

func (e sqliteExecutor) exec(ctx context.Context, q string, args ...any) (int64, error) {
	res, err := e.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func mapSQLiteError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

// NewSQLiteStore returns a Store backed by a handle from database.OpenSQLite,
// whose driver provides the unicode_lower function used by CN and SW.
func NewSQLiteStore[T any, PT entity.RecordPtr[T]](db *sql.DB) *SQLStore[T, PT] {
	d := sqliteDialect
	d.mapError = mapSQLiteError
	return newSQLStore[T, PT](sqliteExecutor{db: db}, d)
}
