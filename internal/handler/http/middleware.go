package http

import (
	"net/http"
	"strings"

	"github.com/cartflow/storefront/internal/service"
	"github.com/cartflow/storefront/pkg/httputil"
	"github.com/cartflow/storefront/pkg/middleware"
)

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteMessage(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// callerFromRequest returns the identity placed in the context by the auth
// middleware.
func callerFromRequest(r *http.Request) service.Caller {
	return service.Caller{
		UserID: middleware.UserIDFromContext(r.Context()),
		Admin:  middleware.IsAdmin(r.Context()),
	}
}
