package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestIPAllowlist(t *testing.T) {
	mw := IPAllowlist([]string{"10.0.0.0/8", "not-a-cidr", "::1/128", "192.0.2.7/24"}, testLogger())

	tests := []struct {
		name   string
		remote string
		want   int
	}{
		{"inside range", "10.1.2.3:5555", http.StatusOK},
		{"ipv6 loopback", "[::1]:5555", http.StatusOK},
		{"ipv4-mapped ipv6", "[::ffff:10.9.8.7]:5555", http.StatusOK},
		{"unmasked cidr", "192.0.2.200:80", http.StatusOK},
		{"bare address", "10.0.0.1", http.StatusOK},
		{"outside range", "192.168.1.1:5555", http.StatusForbidden},
		{"unparseable", "garbage", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
			req.RemoteAddr = tt.remote
			rec := httptest.NewRecorder()

			mw(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", decodeBody(t, rec)["code"])
			}
		})
	}
}

func TestRegisterPprof(t *testing.T) {
	r := chi.NewRouter()
	RegisterPprof(r, []string{"127.0.0.0/8"}, testLogger())

	serve := func(path, remote string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve("/debug/pprof/", "127.0.0.1:4000"))
	assert.Equal(t, http.StatusOK, serve("/debug/vars", "127.0.0.1:4000"))
	assert.Equal(t, http.StatusForbidden, serve("/debug/pprof/", "203.0.113.9:4000"))
}

func TestRegisterPprof_EmptyAllowlistMountsNothing(t *testing.T) {
	r := chi.NewRouter()
	RegisterPprof(r, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "127.0.0.1:4000"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
