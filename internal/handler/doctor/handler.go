package doctor

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SumatiPandey/Doctor-Appointment/internal/handler"
	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/service/rbac"
)

type Service interface {
	List(ctx context.Context) ([]*model.Doctor, error)
	ListBySpecialization(ctx context.Context, spec string) ([]*model.Doctor, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	GetOwnProfile(ctx context.Context, caller model.Principal) (*model.Doctor, error)
	UpdateOwnProfile(ctx context.Context, caller model.Principal, req *model.UpdateDoctorProfileRequest) (*model.Doctor, error)
	Provision(ctx context.Context, caller model.Principal, req *model.ProvisionDoctorRequest) (*model.Doctor, error)
	Deprovision(ctx context.Context, caller model.Principal, id uuid.UUID) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup, guard handler.Guard) {
	doctors := public.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/specialization", h.ListBySpecialization)
		doctors.GET("/:id", h.GetDoctor)
	}

	managed := protected.Group("/doctors")
	{
		managed.GET("/profile/me", guard(rbac.OpReadOwnDoctorProfile), h.GetOwnProfile)
		managed.PUT("/profile", guard(rbac.OpUpdateDoctorProfile), h.UpdateOwnProfile)
		managed.POST("", guard(rbac.OpProvisionDoctor), h.ProvisionDoctor)
		managed.DELETE("/:id", guard(rbac.OpDeprovisionDoctor), h.DeprovisionDoctor)
	}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Respond(c, http.StatusOK, "", model.ListResult("doctors", doctors, len(doctors)))
}

func (h *Handler) ListBySpecialization(c *gin.Context) {
	var query model.SpecializationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		handler.RespondError(c, handler.BindError(err))
		return
	}

	doctors, err := h.service.ListBySpecialization(c.Request.Context(), query.Specialization)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Respond(c, http.StatusOK, "", model.ListResult("doctors", doctors, len(doctors)))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := handler.ParamID(c, "doctor")
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	doctor, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Respond(c, http.StatusOK, "", doctor)
}

func (h *Handler) GetOwnProfile(c *gin.Context) {
	doctor, err := h.service.GetOwnProfile(c.Request.Context(), handler.Principal(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Respond(c, http.StatusOK, "", doctor)
}

func (h *Handler) UpdateOwnProfile(c *gin.Context) {
	var req model.UpdateDoctorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, handler.BindError(err))
		return
	}

	doctor, err := h.service.UpdateOwnProfile(c.Request.Context(), handler.Principal(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Respond(c, http.StatusOK, "Doctor profile updated successfully", doctor)
}

func (h *Handler) ProvisionDoctor(c *gin.Context) {
	var req model.ProvisionDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, handler.BindError(err))
		return
	}

	doctor, err := h.service.Provision(c.Request.Context(), handler.Principal(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Respond(c, http.StatusCreated, "Doctor added successfully", doctor)
}

func (h *Handler) DeprovisionDoctor(c *gin.Context) {
	id, err := handler.ParamID(c, "doctor")
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	if err := h.service.Deprovision(c.Request.Context(), handler.Principal(c), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Respond(c, http.StatusOK, "Doctor deleted successfully", nil)
}
