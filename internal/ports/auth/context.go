package auth

import "context"

type tokenKey struct{}

// WithAccessToken guarda el token del usuario logueado para que los adapters
// hagan las lecturas con su identidad (RLS) en lugar de la anon key.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

func AccessTokenFrom(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey{}).(string)
	return s
}
