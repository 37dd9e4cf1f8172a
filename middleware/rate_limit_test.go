package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.GET("/limited", RateLimitMiddleware(), func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "ok")
	})

	do := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := do("10.9.8.7:4000"); w.Code != http.StatusOK {
		t.Fatalf("first request: status %d, want 200", w.Code)
	}

	// The burst is spent; an immediate retry from the same address is rejected.
	w := do("10.9.8.7:4001")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status %d, want 429", w.Code)
	}
	if !strings.Contains(w.Body.String(), "rate limit exceeded") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}

	// Buckets are per address, so a different client is unaffected.
	if w := do("10.9.8.8:4000"); w.Code != http.StatusOK {
		t.Fatalf("other client: status %d, want 200", w.Code)
	}
}
