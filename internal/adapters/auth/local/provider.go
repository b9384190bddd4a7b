package local

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"

	"vet-clinic/internal/ports/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Provider valida un único admin configurado por env (ADMIN_EMAIL + ADMIN_PASSWORD_HASH).
// Reemplaza a Supabase Auth cuando el proyecto corre sin backend hosteado.
type Provider struct {
	email  string
	hash   []byte
	userID string
}

func NewProvider(email, passwordHash string) (*Provider, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.New("local auth: email required")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, errors.New("local auth: password hash is not bcrypt")
	}
	return &Provider{
		email: strings.ToLower(email),
		hash:  []byte(passwordHash),
		// id estable derivado del email: sobrevive reinicios
		userID: uuid.NewSHA1(uuid.NameSpaceURL, []byte("admin:"+strings.ToLower(email))).String(),
	}, nil
}

func (p *Provider) SignIn(ctx context.Context, login, password string) (auth.Identity, error) {
	login = strings.ToLower(strings.TrimSpace(login))

	// bcrypt corre siempre para no filtrar por timing si el email existe
	pwErr := bcrypt.CompareHashAndPassword(p.hash, []byte(password))
	emailOK := subtle.ConstantTimeCompare(digest(login), digest(p.email)) == 1

	if !emailOK || pwErr != nil {
		return auth.Identity{}, auth.ErrInvalidCredentials
	}
	return auth.Identity{
		UserID: p.userID,
		Email:  p.email,
	}, nil
}

func (p *Provider) SignOut(context.Context, auth.Identity) error { return nil }

func digest(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}
