package middleware

import (
	"net/http"

	"github.com/angelmondragon/warrantywizard-backend/api/responses"
)

// Debug enables stack traces in internal error responses. The router turns
// it on outside production.
func Debug(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(responses.WithDebug(r.Context(), true)))
		})
	}
}
