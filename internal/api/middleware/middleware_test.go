package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emanuel-malungo/jomorais/config"
	"github.com/emanuel-malungo/jomorais/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

func newTestManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: time.Hour,
	})
}

func protectedEngine(mgr *jwt.Manager, bl TokenBlacklist, perfis ...string) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{JWTAuth(mgr, bl)}
	if len(perfis) > 0 {
		handlers = append(handlers, RoleAuth(perfis...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, "%d:%s", c.GetInt64(CtxUserID), c.GetString(CtxPerfil))
	})
	r.GET("/p", handlers...)
	return r
}

func get(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── JWTAuth ──

func TestJWTAuth(t *testing.T) {
	mgr := newTestManager()
	token, err := mgr.GenerateAccessToken(42, "a@b.ao", "secretaria")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(protectedEngine(mgr, nil), tt.header)
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if tt.wantCode == http.StatusOK && w.Body.String() != "42:secretaria" {
				t.Errorf("identity not injected, got %q", w.Body.String())
			}
		})
	}
}

func TestJWTAuth_Blacklisted(t *testing.T) {
	mgr := newTestManager()
	token, _ := mgr.GenerateAccessToken(1, "a@b.ao", "admin")
	claims, _ := mgr.ParseToken(token)

	bl := &fakeBlacklist{revoked: map[string]bool{claims.ID: true}}
	if w := get(protectedEngine(mgr, bl), "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token accepted: %d", w.Code)
	}

	// blacklist outage fails open
	bl = &fakeBlacklist{revoked: map[string]bool{}, err: errors.New("redis down")}
	if w := get(protectedEngine(mgr, bl), "Bearer "+token); w.Code != http.StatusOK {
		t.Errorf("expected 200 on blacklist error, got %d", w.Code)
	}
}

// ── RoleAuth ──

func TestRoleAuth(t *testing.T) {
	mgr := newTestManager()
	secretaria, _ := mgr.GenerateAccessToken(1, "s@b.ao", "secretaria")
	financeiro, _ := mgr.GenerateAccessToken(2, "f@b.ao", "financeiro")

	r := protectedEngine(mgr, nil, "admin", "financeiro")
	if w := get(r, "Bearer "+secretaria); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for secretaria, got %d", w.Code)
	}
	if w := get(r, "Bearer "+financeiro); w.Code != http.StatusOK {
		t.Errorf("expected 200 for financeiro, got %d", w.Code)
	}
}

// ── RateLimit ──

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name     string
		limiter  Limiter
		wantCode int
	}{
		{"no limiter", nil, http.StatusOK},
		{"allowed", &fakeLimiter{allowed: true}, http.StatusOK},
		{"blocked", &fakeLimiter{allowed: false}, http.StatusTooManyRequests},
		{"limiter error", &fakeLimiter{err: errors.New("redis down")}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/login", RateLimit(tt.limiter, 5, time.Minute), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

// ── RequestID / BodyLimit ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("caller request id not reused: %q", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 100))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if len(w.Body.String()) != 36 {
		t.Errorf("oversized request id must be replaced by a uuid, got %q", w.Body.String())
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(10))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 50))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}
