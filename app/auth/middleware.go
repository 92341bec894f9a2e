package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/littlelemon/ordering-api/app/api"
	"github.com/littlelemon/ordering-api/models"
	"github.com/rs/zerolog"
)

type TokenResolver interface {
	GetUserByToken(ctx context.Context, key string) (*models.User, error)
}

// Authenticate resolves an "Authorization: Token <key>" (or Bearer) header
// into an Identity. A missing or unknown token leaves the request anonymous;
// handlers decide whether that is acceptable.
func Authenticate(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := tokenFromHeader(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.GetUserByToken(r.Context(), key)
			if err != nil {
				if !errors.Is(err, models.ErrNotFound) {
					zerolog.Ctx(r.Context()).Error().Err(err).Msg("token lookup failed")
				}
				next.ServeHTTP(w, r)
				return
			}

			who := identityOf(user)
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Uint("user_id", who.UserID)
			})
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), who)))
		})
	}
}

func tokenFromHeader(header string) (string, bool) {
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return "", false
	}
	switch strings.ToLower(fields[0]) {
	case "token", "bearer":
		return fields[1], true
	default:
		return "", false
	}
}

// RequireAuthentication rejects anonymous requests with 401.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := Require(r.Context()); err != nil {
			api.WriteError(w, r, err, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
