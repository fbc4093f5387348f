package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SumatiPandey/Doctor-Appointment/internal/handler"
)

// SizeLimit rejects bodies that declare more than maxBytes and caps the
// reader for those that do not declare a length.
func SizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, handler.NewErrorResponse("Request body too large"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
