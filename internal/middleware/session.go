package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/platform/respond"
	"vet-clinic/internal/ports/auth"
	"vet-clinic/internal/ports/session"
)

type ctxKey string

const sessionKey ctxKey = "session"

const MsgUnauthorized = "Неавторизованный доступ"

// SessionContext:
// - Si viene la cookie y el store la reconoce => setea la sesión en el contexto.
// - Cookie desconocida o expirada => el request sigue sin sesión (sesión vacía implícita).
// - RequireSession decide el 401.
func SessionContext(store session.Store, cookieName string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if err != nil || strings.TrimSpace(c.Value) == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Get(r.Context(), c.Value)
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					logger.FromContext(r.Context(), log).Warn("session lookup failed", logger.Fields{
						"session": logger.ShortID(c.Value),
						"err":     err,
					})
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSession(ctx context.Context) (session.Session, bool) {
	v := ctx.Value(sessionKey)
	if v == nil {
		return session.Session{}, false
	}
	s, ok := v.(session.Session)
	return s, ok
}

// RequireSession corta con 401 antes de llegar al handler (y por lo tanto al store).
// Si pasa, el access token de la sesión queda en el contexto para el Record Store.
func RequireSession(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := GetSession(r.Context())
			if !ok || !s.IsAuthenticated {
				logger.FromContext(r.Context(), log).Warn("unauthorized request rejected", logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				respond.Error(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAccessToken(r.Context(), s.AccessToken)))
		})
	}
}

// CookieOptions: atributos de la cookie de sesión.
type CookieOptions struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func SetSessionCookie(w http.ResponseWriter, opts CookieOptions, s session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
