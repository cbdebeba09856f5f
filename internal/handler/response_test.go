package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func TestSuccess(t *testing.T) {
	c, rec := newTestContext()

	if err := Success(c, 0, "hello", map[string]string{"foo": "bar"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	payload := decodeEnvelope(t, rec)
	if payload.Status != "success" || payload.Message != "hello" || payload.Meta != nil {
		t.Fatalf("unexpected response: %+v", payload)
	}
}

func TestSuccessPage(t *testing.T) {
	c, rec := newTestContext()

	if err := SuccessPage(c, "leads", []string{"a", "b"}, PageMeta{Page: 2, PerPage: 2, Count: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := decodeEnvelope(t, rec)
	if payload.Meta == nil || payload.Meta.Page != 2 || payload.Meta.Count != 2 {
		t.Fatalf("unexpected meta: %+v", payload.Meta)
	}
}

func TestError(t *testing.T) {
	c, rec := newTestContext()

	if err := Error(c, 0, "boom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected default status 500, got %d", rec.Code)
	}

	payload := decodeEnvelope(t, rec)
	if payload.Status != "error" || payload.Message != "boom" {
		t.Fatalf("unexpected response: %+v", payload)
	}
}
