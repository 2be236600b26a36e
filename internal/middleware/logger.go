package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// maxRequestIDLen caps forwarded request IDs so log lines stay bounded.
const maxRequestIDLen = 64

// RequestID propagates a caller-supplied X-Request-ID or mints a fresh
// UUID. Blank and oversized forwarded IDs are replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.New().String()
		}
		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)
		c.Next()
	}
}

// RequestIDFrom returns the ID stored by RequestID, or "" when the
// middleware did not run.
func RequestIDFrom(c *gin.Context) string {
	v, _ := c.Get(requestIDKey)
	rid, _ := v.(string)
	return rid
}

// Logger writes one line per request with the request ID, method, path,
// status, response size, and wall time. Extraction requests spend most of
// that time inside provider calls.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Printf("http.Logger: rid=%s %s %s status=%d bytes=%d dur=%s",
			RequestIDFrom(c),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			c.Writer.Size(),
			time.Since(start).Round(time.Millisecond),
		)
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}
