package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dvloznov/finance-ledger/internal/logger"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("expected generated request ID in context and header, got %q / %q", seen, rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc" {
		t.Errorf("expected incoming request ID to be kept, got %q", seen)
	}
}

func TestLoggerAndRecovery(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf)

	h := RequestID(Logger(log)(Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.FromContext(r.Context())
		reqLog.Info().Msg("inside handler")
		panic("boom")
	}))))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] == "" {
		t.Errorf("expected JSON error body, got %v (%v)", body, err)
	}

	out := buf.String()
	for _, want := range []string{"inside handler", "Panic recovered", "HTTP request", `"status":500`, "request_id"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/transactions", nil))

	if rec.Code != http.StatusNoContent || called {
		t.Errorf("expected 204 without calling next, got %d (called=%v)", rec.Code, called)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}
