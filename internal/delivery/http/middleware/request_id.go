package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// RequestID injects a unique request ID into each request context and response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			id, _ := uuid.NewV7()
			requestID = id.String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}
