package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vet-clinic/internal/domain/clients"

	"github.com/google/uuid"
)

// timeLayout es de ancho fijo para que ORDER BY sobre TEXT respete el orden temporal.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type ClientsRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewClientsRepo(db *sql.DB) *ClientsRepo {
	return &ClientsRepo{db: db, now: time.Now}
}

func (r *ClientsRepo) Insert(ctx context.Context, in clients.NewClient) (clients.Client, error) {
	c := clients.Client{
		ID:        uuid.NewString(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Email:     in.Email,
		PetName:   in.PetName,
		PetType:   in.PetType,
		Message:   in.Message,
		CreatedAt: r.now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (
			id, first_name, last_name,
			phone, email, pet_name, pet_type, message,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.FirstName,
		c.LastName,
		c.Phone,
		c.Email,
		c.PetName,
		c.PetType,
		c.Message,
		c.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return clients.Client{}, fmt.Errorf("insert client: %w", err)
	}
	return c, nil
}

func (r *ClientsRepo) ListNewestFirst(ctx context.Context) ([]clients.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, phone, email, pet_name, pet_type, message, created_at
		FROM clients
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	out := make([]clients.Client, 0)
	for rows.Next() {
		var (
			c                                       clients.Client
			phone, email, petName, petType, message sql.NullString
			createdAt                               string
		)
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &phone, &email, &petName, &petType, &message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		c.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		c.Phone = nullable(phone)
		c.Email = nullable(email)
		c.PetName = nullable(petName)
		c.PetType = nullable(petType)
		c.Message = nullable(message)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ClientsRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients").Scan(&n); err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return n, nil
}

func (r *ClientsRepo) ListPetTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT pet_type FROM clients WHERE pet_type IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("list pet types: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan pet type: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
