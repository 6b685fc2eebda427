package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMiddleware_PropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	l := NewWithWriter("production", &buf)

	r := gin.New()
	r.Use(Middleware(l))
	var fromCtx, fromGin bool
	r.GET("/ping", func(c *gin.Context) {
		fromCtx = From(c.Request.Context()) != nil
		fromGin = FromGin(c) != nil
		From(c.Request.Context()).Info("inside")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "rid-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(HeaderRequestID); got != "rid-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
	if !fromCtx || !fromGin {
		t.Fatalf("expected logger in both contexts")
	}

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	for _, line := range lines {
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			t.Fatalf("invalid json log line: %v", err)
		}
		if rec["request_id"] != "rid-123" {
			t.Fatalf("expected request_id on every line, got %v", rec["request_id"])
		}
	}
}

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(Discard()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Header().Get(HeaderRequestID) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestFrom_FallsBackToDefault(t *testing.T) {
	if From(context.Background()) == nil {
		t.Fatalf("expected default logger")
	}
}
