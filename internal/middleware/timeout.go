package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SumatiPandey/Doctor-Appointment/internal/handler"
	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
)

var ErrRequestTimeout = apperrors.Unavailable("Request timed out", context.DeadlineExceeded)

// Timeout puts a deadline on the request context that repositories pass to
// the database driver. It does not run the handler in a separate goroutine,
// so the handler still owns the response. Only when the handler returns
// without writing anything after the deadline does Timeout answer with 503.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			handler.RespondError(c, ErrRequestTimeout)
		}
	}
}
