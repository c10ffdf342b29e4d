package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := gin.New()
	router.Use(RateLimiter(ctx, 2))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	var last *httptest.ResponseRecorder
	for i := range codes {
		last = httptest.NewRecorder()
		router.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = last.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status codes %v", codes)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header on 429")
	}
}

func TestClientLimiter_Windows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewClientLimiter(ctx, 1)
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	if !l.Allow("10.0.0.1", start) {
		t.Fatal("expected first request admitted")
	}
	if l.Allow("10.0.0.1", start.Add(30*time.Second)) {
		t.Error("expected second request in the window refused")
	}
	if !l.Allow("10.0.0.2", start.Add(30*time.Second)) {
		t.Error("expected clients to be limited independently")
	}
	if !l.Allow("10.0.0.1", start.Add(time.Minute)) {
		t.Error("expected a new window after one minute")
	}

	l.sweep(start.Add(time.Minute + idleAfter/2))
	if l.Tracked() != 2 {
		t.Fatalf("expected live windows kept, got %d", l.Tracked())
	}
	l.sweep(start.Add(10 * time.Minute))
	if l.Tracked() != 0 {
		t.Errorf("expected idle clients forgotten, got %d", l.Tracked())
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), Logger(zap.NewNop()))
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if id := w.Header().Get("X-Request-ID"); id == "" || id != w.Body.String() {
		t.Errorf("expected generated id to be echoed, got header %q body %q", id, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc" {
		t.Errorf("expected incoming id to be kept, got %q", w.Header().Get("X-Request-ID"))
	}
}

func TestBodySizeLimit(t *testing.T) {
	router := gin.New()
	router.Use(BodySizeLimit(8))
	router.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}
