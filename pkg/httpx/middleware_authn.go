package httpx

import (
	"net/http"
	"slices"
	"strings"

	"github.com/aussiebroadwan/bioauth/pkg/jwtx"
	"github.com/aussiebroadwan/bioauth/pkg/slogx"
)

// AuthnMiddleware requires a valid bearer session token and stores its claims
// in the request context.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, http.StatusUnauthorized, "invalid_token", "missing bearer token")
				return
			}

			claims, err := v.Verify(strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")))
			if err != nil {
				slogx.FromContext(r.Context()).Warn("session token rejected", "err", err)
				writeBearerError(w, http.StatusUnauthorized, "invalid_token", "token verification failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireAnyAMR rejects sessions that were not established with one of the
// listed authentication methods. It must run after AuthnMiddleware.
func RequireAnyAMR(methods ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if ok && slices.ContainsFunc(methods, claims.HasAMR) {
				next.ServeHTTP(w, r)
				return
			}
			writeBearerError(w, http.StatusForbidden, "insufficient_authentication",
				"session must be established with "+strings.Join(methods, " or "))
		})
	}
}

// RFC 6750 style bearer error.
func writeBearerError(w http.ResponseWriter, code int, errCode, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="`+errCode+`", error_description="`+desc+`"`)
	WriteError(w, code, errCode, desc)
}
