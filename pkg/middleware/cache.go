package middleware

import (
	"fmt"
	"net/http"
	"time"
)

// CacheControl marks anonymous GET responses as publicly cacheable for maxAge.
// Requests carrying credentials get private, no-store responses.
func CacheControl(maxAge time.Duration) func(http.Handler) http.Handler {
	public := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				if hasCredentials(r) || maxAge <= 0 {
					w.Header().Set("Cache-Control", "private, no-store")
				} else {
					w.Header().Set("Cache-Control", public)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasCredentials(r *http.Request) bool {
	if r.Header.Get("Authorization") != "" {
		return true
	}
	_, err := r.Cookie(TokenCookie)
	return err == nil
}
