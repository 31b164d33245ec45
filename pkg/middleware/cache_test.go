package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheControl(t *testing.T) {
	mw := CacheControl(30 * time.Second)

	tests := []struct {
		name   string
		method string
		setup  func(r *http.Request)
		want   string
	}{
		{"anonymous get", http.MethodGet, func(*http.Request) {}, "public, max-age=30"},
		{"bearer get", http.MethodGet, func(r *http.Request) { r.Header.Set("Authorization", "Bearer x") }, "private, no-store"},
		{"cookie get", http.MethodGet, func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "x"}) }, "private, no-store"},
		{"post untouched", http.MethodPost, func(*http.Request) {}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/products", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			mw(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Header().Get("Cache-Control"))
		})
	}
}

func TestCacheControl_ZeroMaxAge(t *testing.T) {
	rec := httptest.NewRecorder()
	CacheControl(0)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "private, no-store", rec.Header().Get("Cache-Control"))
}
