package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/validator"
)

// ContextPrincipal is the gin context key the auth middleware stores the caller under.
const ContextPrincipal = "principal"

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(message string, data interface{}) *Response {
	return &Response{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

func Respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, NewSuccessResponse(message, data))
}

// RespondError renders err and records it on the context for the error logger.
func RespondError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
}

// BindError converts a ShouldBind failure into a 400.
func BindError(err error) error {
	return validator.Translate(err)
}

// Principal returns the authenticated caller. Routes behind Authenticate always have one.
func Principal(c *gin.Context) model.Principal {
	if v, ok := c.Get(ContextPrincipal); ok {
		if p, ok := v.(model.Principal); ok {
			return p
		}
	}
	return model.Principal{}
}
