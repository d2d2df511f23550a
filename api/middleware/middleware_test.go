package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/bloomhaus/petalboard-backend/pkg/auth"
	"github.com/bloomhaus/petalboard-backend/pkg/config"
	"github.com/bloomhaus/petalboard-backend/pkg/enums"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error")})
}

func okHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDAssignsAndEchoes(t *testing.T) {
	var seen string
	handler := RequestID(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := RequestIDFromContext(r.Context())
		if !ok {
			t.Fatal("expected request id in context")
		}
		seen = id
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("expected a generated request id")
	}
	if got := rec.Header().Get(HeaderRequestID); got != seen {
		t.Fatalf("expected header %q, got %q", seen, got)
	}
}

func TestRequestIDHonorsCallerProvidedID(t *testing.T) {
	handler := RequestID(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := RequestIDFromContext(r.Context())
		if id != "caller-id" {
			t.Fatalf("expected caller-id, got %q", id)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "caller-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	called := false
	handler := RequireRole(testLogger(), enums.RoleAdmin)(okHandler(t, &called))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithRole(req.Context(), string(enums.RoleAdmin)))

	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("expected handler to be called")
	}
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
	called := false
	handler := RequireRole(testLogger(), enums.RoleAdmin)(okHandler(t, &called))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithRole(req.Context(), string(enums.RoleStaff)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if called {
		t.Fatal("expected handler to be skipped")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRoleRejectsMissingContext(t *testing.T) {
	called := false
	handler := RequireRole(testLogger(), enums.RoleAdmin)(okHandler(t, &called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if called {
		t.Fatal("expected handler to be skipped")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "test", ExpirationMinutes: 5}
	called := false
	handler := Auth(cfg, alwaysSession(true), testLogger())(okHandler(t, &called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if called {
		t.Fatal("expected handler to be skipped")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthSeedsContextFromValidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "test", ExpirationMinutes: 5}
	userID := uuid.New()

	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Role:   enums.RoleAdmin,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	handler := Auth(cfg, alwaysSession(true), testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, ok := UserIDFromContext(r.Context())
		if !ok || gotUser != userID.String() {
			t.Fatalf("expected user id %s, got %q", userID, gotUser)
		}
		gotRole, ok := RoleFromContext(r.Context())
		if !ok || gotRole != string(enums.RoleAdmin) {
			t.Fatalf("expected admin role, got %q", gotRole)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "test", ExpirationMinutes: 5}
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.RoleAdmin,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	called := false
	handler := Auth(cfg, alwaysSession(false), testLogger())(okHandler(t, &called))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if called {
		t.Fatal("expected handler to be skipped")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPageAuthRedirectsWithoutCookie(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "test", ExpirationMinutes: 5}
	called := false
	handler := PageAuth(cfg, alwaysSession(true), testLogger())(okHandler(t, &called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))

	if called {
		t.Fatal("expected handler to be skipped")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != LoginPagePath {
		t.Fatalf("expected redirect to %s, got %s", LoginPagePath, loc)
	}
}

func TestPageAuthRedirectsNonAdmin(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "test", ExpirationMinutes: 5}
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.RoleStaff,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	called := false
	handler := PageAuth(cfg, alwaysSession(true), testLogger())(okHandler(t, &called))

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called {
		t.Fatal("expected handler to be skipped")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
}

func TestPageAuthAllowsAdminSession(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "test", ExpirationMinutes: 5}
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.RoleAdmin,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	called := false
	handler := PageAuth(cfg, alwaysSession(true), testLogger())(okHandler(t, &called))

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected handler to be called")
	}
}

func TestAuthRateLimitBlocksAfterLimit(t *testing.T) {
	limiter := &stubLimiter{counts: map[string]int64{}}
	opts := AuthRateLimitOptions{Name: "login", Window: time.Minute, IPLimit: 2}

	called := 0
	handler := AuthRateLimit(limiter, opts, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{}`))
		req.RemoteAddr = "10.0.0.1:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
		if i == 2 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("request %d: expected 429, got %d", i, rec.Code)
		}
	}
	if called != 2 {
		t.Fatalf("expected 2 passing requests, got %d", called)
	}
}

func TestAuthRateLimitSeparatesEmails(t *testing.T) {
	limiter := &stubLimiter{counts: map[string]int64{}}
	opts := AuthRateLimitOptions{Name: "login", Window: time.Minute, EmailLimit: 1}

	handler := AuthRateLimit(limiter, opts, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(email string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"`+email+`"}`))
		req.RemoteAddr = "10.0.0.1:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("a@x.com"); code != http.StatusOK {
		t.Fatalf("first a@x.com: expected 200, got %d", code)
	}
	if code := send("b@x.com"); code != http.StatusOK {
		t.Fatalf("first b@x.com: expected 200, got %d", code)
	}
	if code := send("a@x.com"); code != http.StatusTooManyRequests {
		t.Fatalf("second a@x.com: expected 429, got %d", code)
	}
}

type alwaysSession bool

func (a alwaysSession) HasSession(context.Context, string) (bool, error) {
	return bool(a), nil
}

type stubLimiter struct {
	counts map[string]int64
}

func (s *stubLimiter) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.counts[key]++
	return s.counts[key], nil
}

func (s *stubLimiter) RateLimitKey(scope string) string {
	return "pb:rate_limit:" + scope
}
