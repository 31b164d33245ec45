package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cartflow/storefront/pkg/logger"
)

// RequestLogger stores base in the request context for code that has no
// logger of its own. Request identity is attached per line by the logger's
// context handler, so base itself is not modified.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logger.NewContext(r.Context(), base)))
		})
	}
}
