package sql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/supplychain-resilience/scr/internal"
)

// Error translates postgres errors into scr errors.
func Error(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return internal.ErrResourceNotFound
	case errors.As(err, &pgErr):
		switch pgErr.Code {
		case "23505": // unique violation
			return internal.ErrResourceAlreadyExists
		}
		return err
	default:
		return err
	}
}

// CollectOneRow is pgx.CollectOneRow with errors translated.
func CollectOneRow[T any](rows pgx.Rows, fn pgx.RowToFunc[T]) (T, error) {
	row, err := pgx.CollectOneRow(rows, fn)
	if err != nil {
		return row, Error(err)
	}
	return row, nil
}

// CollectRows is pgx.CollectRows with errors translated.
func CollectRows[T any](rows pgx.Rows, fn pgx.RowToFunc[T]) ([]T, error) {
	collected, err := pgx.CollectRows(rows, fn)
	if err != nil {
		return nil, Error(err)
	}
	return collected, nil
}

// Updater retrieves a row for update within a transaction, hands it to fn to
// modify, and then persists it with update.
func Updater[T any](
	ctx context.Context,
	db *DB,
	getForUpdate func(context.Context) (T, error),
	fn func(context.Context, T) error,
	update func(context.Context, T) error,
) (T, error) {
	var row T
	err := db.Tx(ctx, func(ctx context.Context) (err error) {
		row, err = getForUpdate(ctx)
		if err != nil {
			return err
		}
		if err := fn(ctx, row); err != nil {
			return err
		}
		return update(ctx, row)
	})
	return row, err
}
