package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codearena/internal/common/http/middleware"
	"codearena/internal/testutil"

	"github.com/gin-gonic/gin"
)

func newCORSEngine(cfg middleware.CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CORS(cfg))
	r.POST("/api/chat", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestCORSPreflight(t *testing.T) {
	r := newCORSEngine(middleware.CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		MaxAge:           "600",
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	testutil.AssertEqual(t, w.Code, http.StatusNoContent)
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Origin"), "http://localhost:3000")
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Headers"), "content-type")
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Credentials"), "true")
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Max-Age"), "600")
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	r := newCORSEngine(middleware.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	testutil.AssertEqual(t, w.Code, http.StatusForbidden)

	req = httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Origin"), "")
}

func TestCORSSimpleRequest(t *testing.T) {
	r := newCORSEngine(middleware.CORSConfig{
		AllowedOrigins: []string{"*"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Origin"), "http://localhost")
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Expose-Headers"), "X-RateLimit-Limit, X-RateLimit-Remaining")
}
