package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/SumatiPandey/Doctor-Appointment/internal/handler"
	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
)

// ErrorHandler logs every error recorded on the context and renders the last
// one when the handler did not write a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		logger := log.Ctx(c.Request.Context())
		for _, e := range c.Errors {
			appErr := apperrors.As(e.Err)
			event := logger.Debug()
			if appErr.StatusCode() >= 500 {
				event = logger.Error()
			}
			event.
				Err(e.Err).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Int("status", appErr.StatusCode()).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}

		appErr := apperrors.As(c.Errors.Last().Err)
		c.AbortWithStatusJSON(appErr.StatusCode(), handler.NewErrorResponse(appErr.Message))
	}
}
