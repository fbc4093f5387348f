package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/SumatiPandey/Doctor-Appointment/internal/handler"
	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
)

// Recovery turns a handler panic into the standard "Server error" envelope.
// The log line names the route template and, behind Authenticate, the caller.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// net/http uses this sentinel to drop the connection on purpose.
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			event := log.Error().
				Str("request_id", RequestIDFrom(c)).
				Str("method", c.Request.Method).
				Str("route", routeOf(c)).
				Bytes("stack", debug.Stack())
			if caller := handler.Principal(c); caller.SubjectID != uuid.Nil {
				event = event.
					Str("user_id", caller.SubjectID.String()).
					Str("role", string(caller.Role))
			}
			event.Interface("panic", rec).Msg("Handler panicked")

			handler.RespondError(c, apperrors.Internal(fmt.Errorf("panic: %v", rec)))
		}()
		c.Next()
	}
}
