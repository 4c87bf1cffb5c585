package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

// maxRequestIDLen bounds caller-supplied IDs echoed back in headers and logs.
const maxRequestIDLen = 64

// RequestIDMiddleware propagates a caller's X-Request-ID, or generates one
// when it is missing or malformed.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if !validRequestID(reqID) {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestIDMiddleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
