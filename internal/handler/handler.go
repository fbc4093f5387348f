package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SumatiPandey/Doctor-Appointment/internal/service/rbac"
	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
)

// Guard returns a middleware admitting only the roles allowed to attempt op.
type Guard func(op rbac.Operation) gin.HandlerFunc

// Routes is implemented by every resource handler. Public routes go on
// public; protected already runs the authentication middleware.
type Routes interface {
	RegisterRoutes(public, protected *gin.RouterGroup, guard Guard)
}

// ParamID parses the :id path parameter.
func ParamID(c *gin.Context, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest("Invalid "+resource+" ID", err)
	}
	return id, nil
}
