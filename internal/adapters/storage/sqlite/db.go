package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open abre (o crea) el archivo SQLite con WAL y busy_timeout, y asegura el schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// un solo writer; SQLite serializa de todas formas
	db.SetMaxOpenConns(1)

	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL CHECK (first_name <> ''),
		last_name TEXT NOT NULL CHECK (last_name <> ''),
		phone TEXT,
		email TEXT,
		pet_name TEXT,
		pet_type TEXT,
		message TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS clients_created_at_idx ON clients (created_at);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite schema: %w", err)
	}
	return nil
}
