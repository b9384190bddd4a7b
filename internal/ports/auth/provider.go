package auth

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredentials no distingue login inexistente de password incorrecto.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUpstream: el proveedor no respondió o respondió algo inesperado.
	ErrUpstream = errors.New("auth provider error")
)

// Provider verifica credenciales e invalida sesiones del lado del proveedor.
type Provider interface {
	SignIn(ctx context.Context, login, password string) (Identity, error)
	SignOut(ctx context.Context, id Identity) error
}

// RejectAll se usa cuando no hay proveedor configurado: ningún login prospera.
type RejectAll struct{}

func (RejectAll) SignIn(context.Context, string, string) (Identity, error) {
	return Identity{}, ErrInvalidCredentials
}

func (RejectAll) SignOut(context.Context, Identity) error { return nil }
