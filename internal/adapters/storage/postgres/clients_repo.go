package postgres

import (
	"context"
	"database/sql"

	"vet-clinic/internal/domain/clients"
)

const clientColumns = `
	id::text, first_name, last_name,
	phone, email, pet_name, pet_type, message,
	created_at`

type ClientsRepo struct {
	db *sql.DB
}

func NewClientsRepo(db *sql.DB) *ClientsRepo {
	return &ClientsRepo{db: db}
}

// Insert deja que Postgres asigne id y created_at (RETURNING).
func (r *ClientsRepo) Insert(ctx context.Context, in clients.NewClient) (clients.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO clients (
			first_name, last_name,
			phone, email, pet_name, pet_type, message
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+clientColumns,
		in.FirstName,
		in.LastName,
		toNullString(in.Phone),
		toNullString(in.Email),
		toNullString(in.PetName),
		toNullString(in.PetType),
		toNullString(in.Message),
	)
	return scanClient(row.Scan)
}

func (r *ClientsRepo) ListNewestFirst(ctx context.Context) ([]clients.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]clients.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ClientsRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM clients`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ClientsRepo) ListPetTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT pet_type FROM clients WHERE pet_type IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanClient(scan func(dest ...any) error) (clients.Client, error) {
	var (
		c                                       clients.Client
		phone, email, petName, petType, message sql.NullString
	)
	if err := scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&phone,
		&email,
		&petName,
		&petType,
		&message,
		&c.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return clients.Client{}, ErrNotFound
		}
		return clients.Client{}, err
	}

	c.Phone = fromNullString(phone)
	c.Email = fromNullString(email)
	c.PetName = fromNullString(petName)
	c.PetType = fromNullString(petType)
	c.Message = fromNullString(message)
	return c, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
