package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dangerous-goods-backend/config"
	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/pkg/logger"
	"dangerous-goods-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	utils.SetSecret("middleware-test-secret")
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(sub, sub+"@example.com", role, time.Hour)
	require.NoError(t, err)
	return tok
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Header().Set("X-User", user.ID+"/"+user.Role)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := map[string]struct {
		setup    func(r *http.Request)
		wantCode int
		wantUser string
	}{
		"no token": {
			setup:    func(r *http.Request) {},
			wantCode: http.StatusUnauthorized,
		},
		"garbage token": {
			setup:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			wantCode: http.StatusUnauthorized,
		},
		"bearer header": {
			setup:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token(t, "u1", domain.RoleCustomer)) },
			wantCode: http.StatusNoContent,
			wantUser: "u1/" + domain.RoleCustomer,
		},
		"cookie": {
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "accessToken", Value: token(t, "u2", domain.RoleAdmin)})
			},
			wantCode: http.StatusNoContent,
			wantUser: "u2/" + domain.RoleAdmin,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()

			AuthMiddleware(echoUser()).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantCode, rec.Code)
			assert.Equal(t, tc.wantUser, rec.Header().Get("X-User"))
			if tc.wantCode == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestStoreManagerMiddleware(t *testing.T) {
	tests := map[string]struct {
		user     *domain.User
		wantCode int
	}{
		"no user":      {user: nil, wantCode: http.StatusUnauthorized},
		"customer":     {user: &domain.User{ID: "c", Role: domain.RoleCustomer}, wantCode: http.StatusForbidden},
		"shop manager": {user: &domain.User{ID: "m", Role: domain.RoleShopManager}, wantCode: http.StatusNoContent},
		"admin":        {user: &domain.User{ID: "a", Role: domain.RoleAdmin}, wantCode: http.StatusNoContent},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/settings/dangerous-goods", nil)
			if tc.user != nil {
				req = req.WithContext(context.WithValue(req.Context(), domain.UserContextKey, tc.user))
			}
			rec := httptest.NewRecorder()

			StoreManagerMiddleware(echoUser()).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	cfg := &config.Config{AllowedOrigin: "https://shop.example.com, https://admin.example.com"}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := NewCORSMiddleware(cfg)(next)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://admin.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(context.Background(), 1, 2, time.Minute, time.Minute)
	defer rl.Shutdown()

	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do("203.0.113.7").Code)
	assert.Equal(t, http.StatusNoContent, do("203.0.113.7").Code)

	limited := do("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "Too Many Requests")

	// Another client has its own bucket.
	assert.Equal(t, http.StatusNoContent, do("198.51.100.2").Code)
	assert.Equal(t, 2, rl.trackedClients())
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(context.Background(), 10, 10, time.Hour, time.Millisecond)
	defer rl.Shutdown()

	rl.getVisitor("192.0.2.1")
	time.Sleep(5 * time.Millisecond)
	rl.cleanup()

	assert.Equal(t, 0, rl.trackedClients())
}

func TestRequestLogger(t *testing.T) {
	var sawLogger bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = logger.WithContext(r.Context()) != logger.Get()
		w.WriteHeader(http.StatusCreated)
	})

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequestLogger(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Len(t, rec.Header().Get(requestIDHeader), 8)
		assert.True(t, sawLogger)
	})

	t.Run("reuses incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(requestIDHeader, "edge-1234")
		rec := httptest.NewRecorder()
		RequestLogger(next).ServeHTTP(rec, req)

		assert.Equal(t, "edge-1234", rec.Header().Get(requestIDHeader))
	})
}

func TestGetClientIP(t *testing.T) {
	tests := map[string]struct {
		headers map[string]string
		remote  string
		want    string
	}{
		"forwarded chain": {headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, remote: "10.0.0.2:1234", want: "203.0.113.9"},
		"real ip":         {headers: map[string]string{"X-Real-IP": "198.51.100.4"}, remote: "10.0.0.2:1234", want: "198.51.100.4"},
		"remote addr":     {remote: "192.0.2.10:5555", want: "192.0.2.10"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, getClientIP(req))
		})
	}
}
