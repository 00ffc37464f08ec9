package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMiddleware_PropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "local")

	var scopedCtx, scopedGin bool
	r := gin.New()
	r.Use(Middleware(l))
	r.GET("/items/:id", func(c *gin.Context) {
		scopedCtx = From(c.Request.Context()) != l
		scopedGin = FromGin(c) != l
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	req.Header.Set("X-Request-Id", "rid-1")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "rid-1" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
	if !scopedCtx || !scopedGin {
		t.Fatalf("expected request-scoped logger in both contexts")
	}

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["request_id"] != "rid-1" || line["path"] != "/items/:id" || line["status"] != float64(204) {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(NewWithWriter(&bytes.Buffer{}, "production")))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestLevelFor(t *testing.T) {
	if levelFor("dev") != slog.LevelDebug || levelFor("production") != slog.LevelInfo {
		t.Fatalf("unexpected levels")
	}
}

func TestFrom_FallsBackToDefault(t *testing.T) {
	if From(context.Background()) == nil {
		t.Fatalf("expected default logger")
	}
}
