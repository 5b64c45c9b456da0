package middleware

import (
	"net/http"
)

// RequireLocation lets only sessions from one of the given locations through.
// It must run after Auth.
func RequireLocation(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			location, ok := LocationFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			for _, candidate := range allowed {
				if candidate == location {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "location not permitted")
		})
	}
}
