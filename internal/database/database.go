// Package database manages the PostgreSQL connection pool and schema migrations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/KartikLabhshetwar/FolioSign/internal/config"
)

// System owns the database connection pool.
type System struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens a pgx-backed connection pool using the provided configuration.
func New(cfg config.DatabaseConfig, logger *slog.Logger) (*System, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &System{db: db, logger: logger}, nil
}

// DB returns the underlying connection pool.
func (s *System) DB() *sql.DB {
	return s.db
}

// Ping verifies database connectivity.
func (s *System) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies embedded schema migrations. Already-current schemas are
// not an error.
func (s *System) Migrate() error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := pgx.WithInstance(s.db, &pgx.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx", driver)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, _, _ := m.Version()
	s.logger.Info("migrations applied", "version", version)

	return nil
}

// Close shuts down the connection pool.
func (s *System) Close() error {
	return s.db.Close()
}
