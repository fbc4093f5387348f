package appointment

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
	Book(ctx context.Context, caller model.Principal, req *model.BookAppointmentRequest) (*model.Appointment, error)
	ListForPatient(ctx context.Context, caller model.Principal) ([]*model.Appointment, error)
	ListForDoctor(ctx context.Context, caller model.Principal) ([]*model.Appointment, error)
	ListAll(ctx context.Context, caller model.Principal) ([]*model.Appointment, error)
	Get(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, caller model.Principal, id uuid.UUID, req *model.UpdateAppointmentStatusRequest) (*model.Appointment, error)
	Cancel(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Appointment, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(_, protected *gin.RouterGroup, guard handler.Guard) {
	appointments := protected.Group("/appointments")
	{
		appointments.POST("", guard(rbac.OpBookAppointment), h.BookAppointment)
		appointments.GET("/patient", guard(rbac.OpListPatientAppointments), h.ListPatientAppointments)
		appointments.GET("/doctor", guard(rbac.OpListDoctorAppointments), h.ListDoctorAppointments)
		appointments.GET("/admin/all", guard(rbac.OpListAllAppointments), h.ListAllAppointments)
		appointments.PUT("/:id/status", guard(rbac.OpUpdateAppointmentStatus), h.UpdateStatus)
		appointments.PUT("/:id/cancel", guard(rbac.OpCancelAppointment), h.CancelAppointment)
		appointments.GET("/:id", guard(rbac.OpReadAppointment), h.GetAppointment)
	}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, handler.BindError(err))
		return
	}

	appointment, err := h.service.Book(c.Request.Context(), handler.Principal(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.Respond(c, http.StatusCreated, "Appointment booked successfully", appointment)
}

func (h *Handler) ListPatientAppointments(c *gin.Context) {
	appointments, err := h.service.ListForPatient(c.Request.Context(), handler.Principal(c))
	h.respondList(c, appointments, err)
}

func (h *Handler) ListDoctorAppointments(c *gin.Context) {
	appointments, err := h.service.ListForDoctor(c.Request.Context(), handler.Principal(c))
	h.respondList(c, appointments, err)
}

func (h *Handler) ListAllAppointments(c *gin.Context) {
	appointments, err := h.service.ListAll(c.Request.Context(), handler.Principal(c))
	h.respondList(c, appointments, err)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := handler.ParamID(c, "appointment")
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	appointment, err := h.service.Get(c.Request.Context(), handler.Principal(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.Respond(c, http.StatusOK, "", appointment)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := handler.ParamID(c, "appointment")
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, handler.BindError(err))
		return
	}

	appointment, err := h.service.UpdateStatus(c.Request.Context(), handler.Principal(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.Respond(c, http.StatusOK, "Appointment updated successfully", appointment)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := handler.ParamID(c, "appointment")
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	appointment, err := h.service.Cancel(c.Request.Context(), handler.Principal(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.Respond(c, http.StatusOK, "Appointment cancelled successfully", appointment)
}

func (h *Handler) respondList(c *gin.Context, appointments []*model.Appointment, err error) {
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.Respond(c, http.StatusOK, "", model.ListResult("appointments", appointments, len(appointments)))
}
