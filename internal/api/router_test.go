package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/permitpulse/config"
)

func TestNewRouter_WiringAndMiddlewares(t *testing.T) {
	r := newTestRouter(t, &mockReportService{pdf: []byte("%PDF-")})

	cases := []struct {
		name   string
		path   string
		status int
		ctype  string
	}{
		{name: "upload form", path: "/", status: http.StatusOK, ctype: "text/html; charset=utf-8"},
		{name: "static logo", path: "/static/logo.png", status: http.StatusOK, ctype: "image/png"},
		{name: "pdf download", path: "/api/v1/reports/x/pdf", status: http.StatusOK, ctype: "application/pdf"},
		{name: "unknown route", path: "/nope", status: http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if tc.ctype != "" && w.Header().Get("Content-Type") != tc.ctype {
				t.Fatalf("content-type %q", w.Header().Get("Content-Type"))
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Fatalf("expected X-Request-ID header to be set")
			}
		})
	}
}

func TestNewRouter_RateLimitFromConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.ServerConfig{MaxUploadMB: 1, RateLimitPerMinute: 2, RequestTimeout: time.Second}
	r, err := NewRouter(NewHandler(&mockReportService{}, testBranding), cfg)
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	var last int
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", last)
	}
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(timeout(time.Second))
	r.GET("/", func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("request context has no deadline")
	}
}
