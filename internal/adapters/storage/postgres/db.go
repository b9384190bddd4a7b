package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	ErrNotFound = errors.New("not found")
)

// Open abre un pool a Postgres usando pgx (database/sql).
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	return db, nil
}

// EnsureSchema crea la tabla clients si no existe (mismo layout que en Supabase).
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS clients (
			id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			first_name text NOT NULL CHECK (first_name <> ''),
			last_name  text NOT NULL CHECK (last_name <> ''),
			phone      text,
			email      text,
			pet_name   text,
			pet_type   text,
			message    text,
			created_at timestamptz NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS clients_created_at_idx ON clients (created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}
	return nil
}
