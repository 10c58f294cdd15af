package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/spacetravelling/internal/logger"
	"github.com/spacetravelling/internal/trace"
)

// RequestTrace makes sure every request carries an X-Request-Id, stores it on
// the request context for outbound CMS calls and logs the finished request.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(trace.HeaderRequestID)
		if requestID == "" {
			requestID = trace.NewID()
		}
		c.Request = c.Request.WithContext(trace.WithRequestID(c.Request.Context(), requestID))
		c.Writer.Header().Set(trace.HeaderRequestID, requestID)

		c.Next()

		fields := logger.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": requestID,
			"htmx":       c.GetHeader("HX-Request") == "true",
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		logger.InfoWithFields("completed request", fields)
	}
}

// CORS applies rs/cors to the JSON endpoints. Preflight requests are answered
// here and never reach the handlers.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	policy := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", trace.HeaderRequestID},
		ExposedHeaders: []string{trace.HeaderRequestID},
		MaxAge:         600,
	})
	return func(c *gin.Context) {
		policy.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.Abort()
			return
		}
		c.Next()
	}
}
