package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/logger"
)

// Recovery turns a panic into a 500 with the INTERNAL_ERROR body. The
// stack goes to the log only. http.ErrAbortHandler is re-raised.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.WithContext(c.Request.Context()).Error("panic recovered", logger.Fields(
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
				"method", c.Request.Method,
				logger.FieldPath, c.Request.URL.Path,
			))
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				apperrors.Internal(fmt.Errorf("panic: %v", rec)).ToResponse())
		}()
		c.Next()
	}
}
