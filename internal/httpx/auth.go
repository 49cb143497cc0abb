package httpx

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"log/slog"
	"net/http"
	"strings"
)

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (auth.Principal, error)
}

type principalKey struct{}

func principal(ctx context.Context) auth.Principal {
	p, _ := ctx.Value(principalKey{}).(auth.Principal)
	return p
}

// Authenticate requires "Authorization: Bearer <token>" and stores the resolved principal.
func Authenticate(sessions SessionResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				fail(w, r, log, apperr.Unauthorized("missing bearer token"))
				return
			}
			p, err := sessions.Resolve(r.Context(), strings.TrimSpace(token))
			if err != nil {
				fail(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
		})
	}
}

// RequireRole lets the request through when the principal holds any of roles.
func RequireRole(log *slog.Logger, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := principal(r.Context())
			for _, role := range roles {
				if p.Has(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			fail(w, r, log, apperr.Forbidden("this action requires the %s role", roles[0]))
		})
	}
}
