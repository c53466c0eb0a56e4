package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perr "bangcheong/internal/platform/errors"
	pnet "bangcheong/internal/platform/net"
)

// SharedSecret gates scheduled endpoints behind a shared secret.
// The secret is accepted either as a "secret" query parameter or as an
// Authorization Bearer token. An empty configured secret rejects everything,
// so a misconfigured deployment fails closed
func SharedSecret(secret string, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || !presented(r, secret) {
				status, body := pnet.Error(perr.Unauthorizedf("invalid or missing secret"), pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func presented(r *http.Request, secret string) bool {
	if q := r.URL.Query().Get("secret"); q != "" && eq(q, secret) {
		return true
	}
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer"
	if len(authz) >= len(prefix) && strings.EqualFold(authz[:len(prefix)], prefix) {
		tok := strings.TrimSpace(authz[len(prefix):])
		return tok != "" && eq(tok, secret)
	}
	return false
}

func eq(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
