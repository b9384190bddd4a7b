package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Session es el estado server-side asociado a la cookie.
type Session struct {
	ID              string
	IsAuthenticated bool
	UserID          string
	UserEmail       string
	AccessToken     string

	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Data son los atributos que se guardan al crear una sesión.
type Data struct {
	IsAuthenticated bool
	UserID          string
	UserEmail       string
	AccessToken     string
}

type Store interface {
	// Create emite un id nuevo con expiración now+TTL.
	Create(ctx context.Context, d Data) (Session, error)
	// Get devuelve ErrNotFound si no existe o expiró.
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
