package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

type contextKey string

const principalKey contextKey = "principal"

// NewJWTAuth returns the HS256 verifier for admin tokens
func NewJWTAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// IssueToken signs a token for principal. A zero ttl issues a token without expiry.
func IssueToken(auth *jwtauth.JWTAuth, principal editorial.Principal, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{
		"sub":  principal.ID.String(),
		"role": string(principal.Role),
	}
	if ttl > 0 {
		claims["exp"] = time.Now().Add(ttl)
	}
	_, token, err := auth.Encode(claims)
	return token, err
}

// PrincipalMiddleware turns verified token claims into an editorial.Principal.
// It must run after jwtauth.Verifier and jwtauth.Authenticator.
func PrincipalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			writeStatus(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		sub, _ := claims["sub"].(string)
		id, err := uuid.Parse(sub)
		if err != nil {
			writeStatus(w, r, http.StatusUnauthorized, "token subject is not a profile id")
			return
		}
		roleClaim, _ := claims["role"].(string)
		role := editorial.Role(roleClaim)
		if !role.IsValid() {
			writeStatus(w, r, http.StatusForbidden, "unknown role")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, editorial.Principal{ID: id, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFromContext returns the caller set by PrincipalMiddleware
func PrincipalFromContext(ctx context.Context) (editorial.Principal, bool) {
	p, ok := ctx.Value(principalKey).(editorial.Principal)
	return p, ok
}

// RequireRole rejects principals without one of roles
func RequireRole(roles ...editorial.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok || !slices.Contains(roles, p.Role) {
				writeStatus(w, r, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
