package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig lists what browser origins may call the API.
type CORSConfig struct {
	AllowedOrigins   []string `json:",optional"`
	AllowedMethods   []string `json:",optional"`
	AllowedHeaders   []string `json:",optional"`
	ExposedHeaders   []string `json:",optional"`
	AllowCredentials bool     `json:",default=true"`
	MaxAge           string   `json:",optional"`
}

// CORS answers preflight requests and tags allowed origins. An empty method or
// header list allows whatever the browser asks for.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		preflight := c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != ""
		if !originAllowed(origin, cfg.AllowedOrigins) {
			if preflight {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if exposed != "" {
			h.Set("Access-Control-Expose-Headers", exposed)
		}
		if !preflight {
			c.Next()
			return
		}

		allowMethods := methods
		if allowMethods == "" {
			allowMethods = c.GetHeader("Access-Control-Request-Method")
		}
		h.Set("Access-Control-Allow-Methods", allowMethods)
		reqHeaders := headers
		if reqHeaders == "" {
			reqHeaders = c.GetHeader("Access-Control-Request-Headers")
		}
		if reqHeaders != "" {
			h.Set("Access-Control-Allow-Headers", reqHeaders)
		}
		if cfg.MaxAge != "" {
			h.Set("Access-Control-Max-Age", cfg.MaxAge)
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, item := range allowed {
		item = strings.TrimSpace(item)
		if item == "*" || strings.EqualFold(item, origin) {
			return true
		}
	}
	return false
}
