package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminAuthForKey(t *testing.T, key string) *AdminKeyAuth {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAdminKeyAuth(string(hash))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminKeyAuth_ValidKey(t *testing.T) {
	auth := adminAuthForKey(t, "super-secret")
	assert.True(t, auth.Enabled())
	assert.True(t, auth.IsValid("super-secret"))
	assert.False(t, auth.IsValid("wrong"))
	assert.False(t, auth.IsValid(""))
}

func TestAdminKeyAuth_DisabledReturns404(t *testing.T) {
	auth := NewAdminKeyAuth("")
	assert.False(t, auth.Enabled())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/rebuild", nil)
	req.Header.Set("X-Admin-Key", "anything")

	auth.Middleware(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminKeyAuth_Middleware(t *testing.T) {
	auth := adminAuthForKey(t, "super-secret")
	handler := auth.Middleware(okHandler())

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
	}{
		{
			name:     "missing key",
			setup:    func(r *http.Request) {},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "valid header key",
			setup: func(r *http.Request) {
				r.Header.Set("X-Admin-Key", "super-secret")
			},
			wantCode: http.StatusOK,
		},
		{
			name: "valid bearer token",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer super-secret")
			},
			wantCode: http.StatusOK,
		},
		{
			name: "invalid key",
			setup: func(r *http.Request) {
				r.Header.Set("X-Admin-Key", "guess")
			},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/rebuild", nil)
			tt.setup(req)

			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestNoCacheMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	NoCacheMiddleware(okHandler()).ServeHTTP(rec, req)

	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	handler := RequestSizeLimitMiddleware(10)(okHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.ContentLength = 100

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) MiddlewareFunc {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := ChainHandler(okHandler(), mark("outer"), mark("inner"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "60", formatSeconds(60e9))
	assert.Equal(t, "0", formatSeconds(0))
	assert.Equal(t, "0", formatSeconds(-5e9))
}
