package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ayush/devconnector/internal/apperr"
)

type fakeVerifier map[string]error

func (f fakeVerifier) Verify(token string) (string, error) {
	if err, ok := f[token]; ok {
		return "", err
	}
	return "user-" + token, nil
}

func protected(v TokenVerifier) (http.Handler, *string) {
	var seen string
	h := RequireAuth(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &seen
}

func TestRequireAuth(t *testing.T) {
	v := fakeVerifier{
		"expired": apperr.New(apperr.KindTokenExpired, "Token has expired"),
		"garbage": apperr.New(apperr.KindInvalidToken, "Token is not valid"),
		"weird":   errors.New("unexpected verifier failure"),
	}
	cases := []struct {
		name   string
		token  string
		status int
		msg    string
	}{
		{"missing", "", http.StatusUnauthorized, "No token, authorization denied"},
		{"expired", "expired", http.StatusUnauthorized, "Token has expired"},
		{"invalid", "garbage", http.StatusUnauthorized, "Token is not valid"},
		{"unclassified", "weird", http.StatusUnauthorized, "Token is not valid"},
		{"valid", "abc", http.StatusNoContent, ""},
	}
	for _, c := range cases {
		h, seen := protected(v)
		req := httptest.NewRequest(http.MethodGet, "/api/auth", nil)
		if c.token != "" {
			req.Header.Set("x-auth-token", c.token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != c.status {
			t.Fatalf("%s: status %d, want %d", c.name, rec.Code, c.status)
		}
		if c.msg != "" && !strings.Contains(rec.Body.String(), c.msg) {
			t.Fatalf("%s: body %q missing %q", c.name, rec.Body.String(), c.msg)
		}
		if c.status == http.StatusNoContent && *seen != "user-abc" {
			t.Fatalf("%s: user id %q not injected", c.name, *seen)
		}
	}
}

func TestUserIDOutsideMiddleware(t *testing.T) {
	if id := UserID(context.Background()); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
	if id := UserID(WithUserID(context.Background(), "42")); id != "42" {
		t.Fatalf("expected 42, got %q", id)
	}
}

type stepCounter struct {
	n   int64
	err error
}

func (c *stepCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	c.n++
	return c.n, c.err
}

func TestRateLimit(t *testing.T) {
	counter := &stepCounter{}
	h := RateLimit(counter, "login", 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	counter := &stepCounter{n: 100, err: errors.New("redis down")}
	h := RateLimit(counter, "login", 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected request to pass when counter fails, got %d", rec.Code)
	}
}
