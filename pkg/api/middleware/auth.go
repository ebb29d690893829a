// Package middleware provides HTTP middleware for the hub's API: bearer
// authentication and request-scoped principal propagation. Grounded on
// _examples/marmos91-dittofs/pkg/api/middleware/auth.go (JWTAuth/RequireAdmin/
// OptionalJWTAuth and the unexported-contextKey + accessor pattern), adapted
// to authenticate via pkg/auth.Service.AuthenticateBearer (which accepts
// both session JWTs and hub_<random> API tokens on the same header, per
// spec §4.C1) instead of the teacher's JWT-only validation.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/marmos91/hubd/pkg/api/httperr"
	"github.com/marmos91/hubd/pkg/auth"
	"github.com/marmos91/hubd/pkg/metadata"
)

type contextKey string

const principalContextKey contextKey = "principal"

// GetPrincipal retrieves the authenticated principal from the request
// context. Returns nil for anonymous requests (no token, or RequireAuth was
// never applied to the route).
func GetPrincipal(ctx context.Context) *auth.AuthenticatedPrincipal {
	p, _ := ctx.Value(principalContextKey).(*auth.AuthenticatedPrincipal)
	return p
}

// AsMetadataPrincipal narrows an AuthenticatedPrincipal to the subset of
// metadata.Principal that authz.BuildDecision inspects (ID, Username,
// Role, Groups), so
// handlers can build a Decision without a second store round-trip.
func AsMetadataPrincipal(p *auth.AuthenticatedPrincipal) *metadata.Principal {
	if p == nil {
		return nil
	}
	return &metadata.Principal{ID: p.ID, Username: p.Username, Role: p.Role, Groups: p.Groups}
}

func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireAuth validates the Authorization bearer header via svc and rejects
// the request with 401 unauthenticated when it is missing or invalid.
func RequireAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				httperr.Write(w, httperr.Unauthenticated)
				return
			}

			principal, err := svc.AuthenticateBearer(r.Context(), token)
			if err != nil {
				httperr.Write(w, httperr.Unauthenticated)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth behaves like RequireAuth but lets the request continue
// without a principal when no valid bearer credential is present, for
// routes that serve both public and private repositories (resolve, tree,
// revision) and decide access per-repository inside the handler.
func OptionalAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := svc.AuthenticateBearer(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireHubAdmin blocks callers whose hub-wide role is not metadata.RoleAdmin.
// Must run after RequireAuth.
func RequireHubAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipal(r.Context())
			if principal == nil {
				httperr.Write(w, httperr.Unauthenticated)
				return
			}
			if principal.Role != metadata.RoleAdmin {
				httperr.Write(w, httperr.Forbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
