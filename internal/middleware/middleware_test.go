package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/donatrack/donatrack/internal/auth"
	"github.com/donatrack/donatrack/internal/cache"
	"github.com/donatrack/donatrack/internal/metrics"
	"github.com/donatrack/donatrack/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeVerifier struct {
	identity *model.Identity
	err      error
	calls    int
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*model.Identity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestAuth(t *testing.T) {
	identity := &model.Identity{UserID: 1, Username: "admin"}

	tests := []struct {
		name        string
		header      string
		verifyErr   error
		wantStatus  int
		wantMessage string
		wantCalls   int
	}{
		{"missing header", "", nil, http.StatusUnauthorized, "Access token required", 0},
		{"wrong scheme", "Basic YWRtaW46YWRtaW4=", nil, http.StatusUnauthorized, "Access token required", 0},
		{"empty bearer", "Bearer ", nil, http.StatusUnauthorized, "Access token required", 0},
		{"invalid token", "Bearer garbage", errors.New("invalid"), http.StatusForbidden, "Invalid or expired token", 1},
		{"valid token", "Bearer good", nil, http.StatusOK, "", 1},
		{"lowercase scheme", "bearer good", nil, http.StatusOK, "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{identity: identity, err: tt.verifyErr}

			var seen *model.Identity
			handler := Auth(AuthConfig{Logger: discardLogger(), Verifier: verifier})(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					seen = auth.IdentityFromContext(r.Context())
					w.WriteHeader(http.StatusOK)
				}),
			)

			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if verifier.calls != tt.wantCalls {
				t.Errorf("verifier calls = %d, want %d", verifier.calls, tt.wantCalls)
			}
			if tt.wantStatus != http.StatusOK {
				if seen != nil {
					t.Error("handler must not run for rejected requests")
				}
				if body := decodeErrorBody(t, rec); body.Message != tt.wantMessage {
					t.Errorf("message = %q, want %q", body.Message, tt.wantMessage)
				}
				return
			}
			if seen == nil || seen.Username != "admin" {
				t.Errorf("identity not propagated: %+v", seen)
			}
		})
	}
}

type fakeLimiter struct {
	results []*cache.RateLimitResult
	err     error
	ips     []string
}

func (f *fakeLimiter) CheckLoginRateLimit(ctx context.Context, ip string, ratePerMinute, burst int) (*cache.RateLimitResult, error) {
	f.ips = append(f.ips, ip)
	if f.err != nil {
		return nil, f.err
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r, nil
}

func TestRateLimitLogin(t *testing.T) {
	limiter := &fakeLimiter{results: []*cache.RateLimitResult{
		{Allowed: true, Remaining: 0, ResetAt: time.Now().Add(time.Minute)},
		{Allowed: false, Remaining: 0, ResetAt: time.Now().Add(time.Minute), RetryAfter: 6 * time.Second},
	}}
	recorder := metrics.NewInMemory()

	handler := RateLimitLogin(RateLimitConfig{
		Logger:        discardLogger(),
		Limiter:       limiter,
		Recorder:      recorder,
		Enabled:       true,
		RatePerMinute: 10,
		Burst:         1,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "203.0.113.9:51234"
		return req
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newReq())
	if rec.Code != http.StatusOK {
		t.Fatalf("first attempt status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "10" {
		t.Errorf("X-RateLimit-Limit = %q, want 10", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, newReq())
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second attempt status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "6" {
		t.Errorf("Retry-After = %q, want 6", rec.Header().Get("Retry-After"))
	}
	if body := decodeErrorBody(t, rec); body.Code != "RATE_LIMITED" {
		t.Errorf("code = %q, want RATE_LIMITED", body.Code)
	}

	if limiter.ips[0] != "203.0.113.9" {
		t.Errorf("limiter keyed on %q, want host without port", limiter.ips[0])
	}
	if got := recorder.Snapshot().LoginAttempts[metrics.LoginRateLimited]; got != 1 {
		t.Errorf("rate limited attempts = %d, want 1", got)
	}
}

func TestRateLimitLogin_FailOpenAndDisabled(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	failing := &fakeLimiter{err: errors.New("redis down")}
	handler := RateLimitLogin(RateLimitConfig{Logger: discardLogger(), Limiter: failing, Enabled: true, RatePerMinute: 1, Burst: 1})(next)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("limiter errors must fail open, got %d", rec.Code)
	}

	unused := &fakeLimiter{}
	handler = RateLimitLogin(RateLimitConfig{Logger: discardLogger(), Limiter: unused, Enabled: false})(next)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil))
	if rec.Code != http.StatusOK || len(unused.ips) != 0 {
		t.Errorf("disabled limiter must not be consulted")
	}
}

func TestRecoverer(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestID(Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeErrorBody(t, rec)
	if body.Message != "Server error" || body.Code != "INTERNAL_ERROR" {
		t.Errorf("unexpected body: %+v", body)
	}
	if !strings.Contains(buf.String(), "kaboom") || !strings.Contains(buf.String(), rec.Header().Get(RequestIDHeader)) {
		t.Errorf("panic not logged with request id: %s", buf.String())
	}
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated when absent", "", false},
		{"reused when well formed", "abc-123_DEF.4", true},
		{"replaced when too long", strings.Repeat("a", 65), false},
		{"replaced when unsafe", "bad id\nwith newline", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fromCtx string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fromCtx = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got == "" || got != fromCtx {
				t.Fatalf("header %q and context %q must match and be set", got, fromCtx)
			}
			if tt.keep && got != tt.incoming {
				t.Errorf("request id = %q, want %q", got, tt.incoming)
			}
			if !tt.keep && got == tt.incoming {
				t.Errorf("request id %q should have been replaced", got)
			}
		})
	}
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	recorder := metrics.NewInMemory()

	r := chi.NewRouter()
	r.Use(Metrics(recorder))
	r.Get("/api/donations/date/{date}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/api/donations/date/2024-01-01", "/api/donations/date/2024-01-02", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := recorder.Snapshot().RequestCount; got != 3 {
		t.Errorf("RequestCount = %d, want 3", got)
	}
}
