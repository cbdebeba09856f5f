package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octobees/pharmacy-leads/internal/config"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-123")

	err := Logging(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	entries := logs.FilterField(zap.String("request_id", "rid-123")).All()
	if len(entries) != 1 {
		t.Fatalf("expected one access line with request id, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/healthz" || fields["status"] != int64(http.StatusOK) || fields["method"] != http.MethodGet {
		t.Fatalf("unexpected fields: %v", fields)
	}

	// errors are propagated and logged at warn level
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-456")
	expected := errors.New("boom")
	err = Logging(logger)(func(c echo.Context) error {
		return expected
	})(c)
	if !errors.Is(err, expected) {
		t.Fatalf("expected error to bubble up")
	}
	failed := logs.FilterField(zap.String("request_id", "rid-456")).All()
	if len(failed) != 1 || failed[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn entry for failed request, got %+v", failed)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected echo error handler to write 500, got %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	mw := RequestID()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = mw(func(c echo.Context) error { return nil })(c)
	if RequestIDFromContext(c) != "given" || rec.Header().Get("X-Request-ID") != "given" {
		t.Fatalf("expected caller request id to be kept")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	_ = mw(func(c echo.Context) error { return nil })(c)
	if RequestIDFromContext(c) == "" {
		t.Fatalf("expected generated request id")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "bad id\twith spaces")
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	_ = mw(func(c echo.Context) error { return nil })(c)
	if RequestIDFromContext(c) == "bad id\twith spaces" {
		t.Fatalf("expected unprintable request id to be replaced")
	}
}

func TestScanRateLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{Requests: 1, Interval: time.Minute}
	mw := ScanRateLimiter(cfg)

	e := echo.New()
	nextCalls := 0
	next := func(c echo.Context) error {
		nextCalls++
		return c.NoContent(http.StatusOK)
	}

	newScanContext := func() (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodPost, ScanPath, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath(ScanPath)
		return c, rec
	}

	c, rec := newScanContext()
	_ = mw(next)(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	c2, rec2 := newScanContext()
	_ = mw(next)(c2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request rejected, got %d", rec2.Code)
	}
	if rec2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	// Non-scan path should bypass limiter.
	req3 := httptest.NewRequest(http.MethodGet, "/leads", nil)
	rec3 := httptest.NewRecorder()
	c3 := e.NewContext(req3, rec3)
	c3.SetPath("/leads")
	_ = mw(next)(c3)
	if rec3.Code != http.StatusOK {
		t.Fatalf("expected non-scan request to pass")
	}

	// zero config should behave as passthrough
	mw = ScanRateLimiter(config.RateLimitConfig{})
	c4, rec4 := newScanContext()
	_ = mw(next)(c4)
	if rec4.Code != http.StatusOK {
		t.Fatalf("expected passthrough when limiter disabled")
	}
	if nextCalls != 3 {
		t.Fatalf("expected next handler invoked 3 times, got %d", nextCalls)
	}
}
