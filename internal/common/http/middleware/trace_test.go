package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codearena/internal/common/http/middleware"
	"codearena/internal/testutil"
	"codearena/pkg/utils/contextkey"

	"github.com/gin-gonic/gin"
)

func newEngine(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Trace(), middleware.AccessLog())
	r.GET("/ping", func(c *gin.Context) {
		if v, ok := c.Request.Context().Value(contextkey.RequestID).(string); ok {
			*seen = v
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestTraceKeepsIncomingRequestID(t *testing.T) {
	var seen string
	r := newEngine(&seen)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	testutil.AssertEqual(t, seen, "req-42")
	testutil.AssertEqual(t, w.Header().Get(middleware.RequestIDHeader), "req-42")
	testutil.AssertTrue(t, w.Header().Get(middleware.TraceIDHeader) != "", "trace id generated")
}

func TestTraceGeneratesIDs(t *testing.T) {
	var seen string
	r := newEngine(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	testutil.AssertTrue(t, seen != "", "request id generated")
	testutil.AssertEqual(t, w.Header().Get(middleware.RequestIDHeader), seen)
}
