// Package repository provides shared database access helpers built on
// database/sql with PostgreSQL error mapping via pgx.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by repository helpers. Callers translate these
// into domain errors at the package boundary.
var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("record conflict")
	ErrNoEffect  = errors.New("operation had no effect")
	ErrReference = errors.New("referenced record missing")
)

// Querier abstracts *sql.DB and *sql.Tx for query helpers.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Scanner adapts sql.Row and sql.Rows for shared scan functions.
type Scanner interface {
	Scan(dest ...any) error
}

// QueryOne executes a query expected to return a single record and scans it
// with scan. Missing records map to ErrNotFound.
func QueryOne[T any](ctx context.Context, q Querier, query string, scan func(Scanner) (T, error), args ...any) (T, error) {
	row := q.QueryRowContext(ctx, query, args...)

	result, err := scan(row)
	if err != nil {
		var zero T
		return zero, MapError(err)
	}

	return result, nil
}

// QueryMany executes a query and scans all resulting rows with scan.
func QueryMany[T any](ctx context.Context, q Querier, query string, scan func(Scanner) (T, error), args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		result, err := scan(rows)
		if err != nil {
			return nil, MapError(err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return results, nil
}

// ExecExpectOne executes a statement and returns ErrNoEffect unless exactly
// one row was affected.
func ExecExpectOne(ctx context.Context, q Querier, query string, args ...any) error {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}

	if affected != 1 {
		return ErrNoEffect
	}

	return nil
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return MapError(err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return MapError(err)
	}

	return nil
}

// MapError translates driver errors into repository sentinel errors.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", ErrReference, pgErr.ConstraintName)
		}
	}

	return err
}
