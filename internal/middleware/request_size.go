package middleware

import (
	"net/http"

	"fleet-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

const DefaultMaxRequestSize = 10 << 20

// RequestSizeLimitMiddleware rejects request bodies larger than maxSize bytes.
func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
