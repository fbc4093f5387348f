package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SumatiPandey/Doctor-Appointment/internal/handler"
	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/service/rbac"
	"github.com/SumatiPandey/Doctor-Appointment/internal/service/user"
)

type Handler struct {
	service user.UserServicer
}

func NewHandler(service user.UserServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(_, protected *gin.RouterGroup, guard handler.Guard) {
	users := protected.Group("/users")
	{
		users.GET("/me", guard(rbac.OpReadSelf), h.GetMe)
		users.PUT("/me", guard(rbac.OpUpdateSelf), h.UpdateMe)
	}

	// The admin listing lives under /auth alongside the identity endpoints.
	protected.GET("/auth/users", guard(rbac.OpListUsers), h.ListUsers)
}

func (h *Handler) GetMe(c *gin.Context) {
	u, err := h.service.GetMe(c.Request.Context(), handler.Principal(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Respond(c, http.StatusOK, "", u)
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, handler.BindError(err))
		return
	}

	u, err := h.service.UpdateMe(c.Request.Context(), handler.Principal(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Respond(c, http.StatusOK, "Profile updated successfully", u)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.List(c.Request.Context(), handler.Principal(c), c.Query("role"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Respond(c, http.StatusOK, "", model.ListResult("users", users, len(users)))
}
