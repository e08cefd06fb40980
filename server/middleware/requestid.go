package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/chunkscribe/logger"
)

// HeaderRequestID is the request correlation header.
const HeaderRequestID = "X-Request-Id"

const maxRequestIDLen = 128

// RequestID makes sure every request carries an X-Request-Id, echoes it on
// the response and stores it in the request context for logger.WithContext.
// Oversized client IDs are replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
			c.Request.Header.Set(HeaderRequestID, id)
		}
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
