package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/util"
)

const defaultMaxBodySize = 2 << 30

// BodySizeLimit caps request bodies at maxSize ("512MB", "2GB"). A declared
// Content-Length over the limit is refused with 413 before any byte is
// read; chunked bodies fail with *http.MaxBytesError once they cross it.
func BodySizeLimit(maxSize string) gin.HandlerFunc {
	limit := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, apperrors.New(apperrors.ErrCodeInvalidInput,
				"The upload exceeds the maximum allowed size.", http.StatusRequestEntityTooLarge).
				WithDetail("limit_bytes", limit).ToResponse())
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
