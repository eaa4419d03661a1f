package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID attaches a unique id to each request, honoring an
// incoming X-Request-ID header when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = xid.New().String()
		}

		c.Set("request_id", requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		c.Next()
	}
}
