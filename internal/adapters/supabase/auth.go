package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"vet-clinic/internal/platform/httpclient"
	"vet-clinic/internal/ports/auth"
)

// AuthProvider implementa auth.Provider contra GoTrue (/auth/v1).
type AuthProvider struct {
	client *Client
}

func NewAuthProvider(client *Client) *AuthProvider {
	return &AuthProvider{client: client}
}

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordGrantResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (p *AuthProvider) SignIn(ctx context.Context, login, password string) (auth.Identity, error) {
	if p == nil || p.client == nil {
		return auth.Identity{}, ErrNotConfigured
	}

	var out passwordGrantResponse
	err := p.client.http.DoJSON(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", nil,
		passwordGrantRequest{Email: login, Password: password}, &out)
	if err != nil {
		switch httpclient.StatusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusUnprocessableEntity:
			// GoTrue responde 400 invalid_grant tanto para email inexistente como para password incorrecto
			return auth.Identity{}, auth.ErrInvalidCredentials
		default:
			return auth.Identity{}, fmt.Errorf("%w: sign in: %w", auth.ErrUpstream, err)
		}
	}

	if strings.TrimSpace(out.User.ID) == "" {
		return auth.Identity{}, fmt.Errorf("%w: sign in: response missing user id", auth.ErrUpstream)
	}

	return auth.Identity{
		UserID:      out.User.ID,
		Email:       out.User.Email,
		AccessToken: out.AccessToken,
	}, nil
}

// SignOut revoca el access token de esa sesión (no la de otros admins).
func (p *AuthProvider) SignOut(ctx context.Context, id auth.Identity) error {
	if p == nil || p.client == nil {
		return ErrNotConfigured
	}
	if strings.TrimSpace(id.AccessToken) == "" {
		return errors.New("sign out: no access token")
	}

	err := p.client.http.DoJSON(ctx, http.MethodPost, "/auth/v1/logout", p.client.bearer(id.AccessToken), nil, nil)
	if err != nil {
		return fmt.Errorf("%w: sign out: %w", auth.ErrUpstream, err)
	}
	return nil
}
