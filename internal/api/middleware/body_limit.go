package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emanuel-malungo/jomorais/pkg/response"
)

// BodyLimit caps request bodies at maxBytes (e.g. 1<<20 = 1 MiB).
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, "Pedido demasiado grande")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
