package middleware

import (
	"crypto/subtle"
	"net/http"
)

const TokenHeader = "X-Token"

// RequireToken checks the shared-secret X-Token header. Requests without the
// header pass through; a header with the wrong value is rejected with 400.
func RequireToken(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			values := r.Header.Values(TokenHeader)
			if len(values) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if len(values) > 1 || subtle.ConstantTimeCompare([]byte(values[0]), []byte(expected)) != 1 {
				respondError(w, "X-Token header invalid", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
