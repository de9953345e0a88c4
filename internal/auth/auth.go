// package auth guards the operator endpoints with pre-provisioned HMAC
// bearer tokens. The public verify endpoint is intentionally unguarded;
// scanning terminals present arbitrary tokens by design.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const ctxKeySubject ctxKey = "batchguard.subject"

// Subject returns the sub claim of the validated bearer token, or "".
func Subject(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySubject).(string); ok {
		return v
	}
	return ""
}

// RequireBearer returns middleware that validates an HS256-signed JWT from
// the Authorization header. With an empty secret the middleware is a
// pass-through (dev mode); callers decide whether that is acceptable at
// wiring time.
func RequireBearer(secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				http.Error(w, "bearer token required", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimSpace(authz[len("bearer "):])

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !tok.Valid {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			sub := ""
			if claims, ok := tok.Claims.(jwt.MapClaims); ok {
				if s, err := claims.GetSubject(); err == nil {
					sub = s
				}
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeySubject, sub)))
		})
	}
}
