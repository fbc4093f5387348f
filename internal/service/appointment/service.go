package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/repository"
	"github.com/SumatiPandey/Doctor-Appointment/internal/service/event"
	"github.com/SumatiPandey/Doctor-Appointment/internal/service/rbac"
	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/metrics"
)

var (
	ErrMissingFields         = apperrors.BadRequest("Please provide all required fields", nil)
	ErrDoctorNotFound        = apperrors.NotFound("Doctor", nil)
	ErrDoctorProfileNotFound = apperrors.NotFound("Doctor profile", nil)
	ErrAppointmentNotFound   = apperrors.NotFound("Appointment", nil)
	ErrSlotTaken             = apperrors.Conflict("This time slot is already booked", nil)
)

// Service is the appointment scheduler. It holds no state between calls;
// slot exclusivity is enforced by the store.
type Service struct {
	repo    repository.AppointmentRepository
	doctors repository.DoctorRepository
	policy  *rbac.Policy
	events  event.Emitter
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	policy *rbac.Policy,
	events event.Emitter,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:    repo,
		doctors: doctors,
		policy:  policy,
		events:  events,
		metrics: metrics,
		now:     time.Now,
	}
}

// Book creates a pending appointment for the calling patient.
func (s *Service) Book(ctx context.Context, caller model.Principal, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if err := s.policy.CheckRole(caller, rbac.OpBookAppointment); err != nil {
		return nil, err
	}
	if req == nil || req.DoctorID == uuid.Nil || req.AppointmentDate == nil || req.AppointmentDate.IsZero() || req.TimeSlot == "" {
		return nil, ErrMissingFields
	}
	if !req.TimeSlot.Valid() {
		return nil, model.ErrInvalidTimeSlot
	}

	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.policy.Authorize(caller, rbac.OpBookAppointment, rbac.Resource{
		PatientID:       caller.SubjectID,
		DoctorProfileID: doctor.ID,
	}); err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		PatientID:       caller.SubjectID,
		DoctorID:        doctor.ID,
		AppointmentDate: *req.AppointmentDate,
		TimeSlot:        req.TimeSlot,
		Reason:          req.Reason,
		Status:          model.AppointmentStatusPending,
	}

	taken, err := s.repo.SlotTaken(ctx, appointment.SlotKey())
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if taken {
		s.metrics.SlotConflicts.Inc()
		return nil, ErrSlotTaken
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			s.metrics.SlotConflicts.Inc()
			return nil, ErrSlotTaken
		}
		return nil, apperrors.Internal(err)
	}

	booked, err := s.load(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.AppointmentsBooked.Inc()
	s.emit(ctx, model.EventAppointmentBooked, booked, caller)
	return booked, nil
}

func (s *Service) ListForPatient(ctx context.Context, caller model.Principal) ([]*model.Appointment, error) {
	if err := s.policy.CheckRole(caller, rbac.OpListPatientAppointments); err != nil {
		return nil, err
	}
	return s.list(ctx, &model.AppointmentFilters{PatientID: caller.SubjectID})
}

func (s *Service) ListForDoctor(ctx context.Context, caller model.Principal) ([]*model.Appointment, error) {
	if err := s.policy.CheckRole(caller, rbac.OpListDoctorAppointments); err != nil {
		return nil, err
	}

	doctor, err := s.doctors.GetByUserID(ctx, caller.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDoctorProfileNotFound
		}
		return nil, apperrors.Internal(err)
	}

	return s.list(ctx, &model.AppointmentFilters{DoctorID: doctor.ID})
}

func (s *Service) ListAll(ctx context.Context, caller model.Principal) ([]*model.Appointment, error) {
	if err := s.policy.CheckRole(caller, rbac.OpListAllAppointments); err != nil {
		return nil, err
	}
	return s.list(ctx, nil)
}

// Get returns the appointment to an admin, its patient or its assigned doctor.
func (s *Service) Get(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Appointment, error) {
	if err := s.policy.CheckRole(caller, rbac.OpReadAppointment); err != nil {
		return nil, err
	}

	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := s.resource(ctx, caller, appointment)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, rbac.OpReadAppointment, res); err != nil {
		return nil, err
	}

	return appointment, nil
}

// UpdateStatus sets any status value. Notes are replaced only when non-empty.
func (s *Service) UpdateStatus(ctx context.Context, caller model.Principal, id uuid.UUID, req *model.UpdateAppointmentStatusRequest) (*model.Appointment, error) {
	if err := s.policy.CheckRole(caller, rbac.OpUpdateAppointmentStatus); err != nil {
		return nil, err
	}
	if req == nil || !req.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := s.resource(ctx, caller, appointment)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, rbac.OpUpdateAppointmentStatus, res); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status, req.Notes); err != nil {
		return nil, s.mapWriteError(err)
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.StatusTransitions.WithLabelValues(string(req.Status), string(caller.Role)).Inc()
	s.emit(ctx, model.EventAppointmentStatusUpdated, updated, caller)
	return updated, nil
}

// Cancel is idempotent: cancelling a cancelled appointment succeeds without a write.
func (s *Service) Cancel(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Appointment, error) {
	if err := s.policy.CheckRole(caller, rbac.OpCancelAppointment); err != nil {
		return nil, err
	}

	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(caller, rbac.OpCancelAppointment, rbac.Resource{
		PatientID:       appointment.PatientID,
		DoctorProfileID: appointment.DoctorID,
	}); err != nil {
		return nil, err
	}

	if appointment.Status == model.AppointmentStatusCancelled {
		return appointment, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, model.AppointmentStatusCancelled, ""); err != nil {
		return nil, s.mapWriteError(err)
	}

	cancelled, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.AppointmentsCancelled.Inc()
	s.emit(ctx, model.EventAppointmentCancelled, cancelled, caller)
	return cancelled, nil
}

func (s *Service) list(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appointments, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, apperrors.Internal(err)
	}
	return appointment, nil
}

// resource gathers the ownership facts for an appointment. A doctor caller
// without a profile simply owns nothing.
func (s *Service) resource(ctx context.Context, caller model.Principal, a *model.Appointment) (rbac.Resource, error) {
	res := rbac.Resource{
		PatientID:       a.PatientID,
		DoctorProfileID: a.DoctorID,
	}
	if !caller.Is(model.RoleDoctor) {
		return res, nil
	}

	doctor, err := s.doctors.GetByUserID(ctx, caller.SubjectID)
	switch {
	case err == nil:
		res.CallerProfileID = doctor.ID
	case errors.Is(err, repository.ErrNotFound):
	default:
		return res, apperrors.Internal(err)
	}
	return res, nil
}

func (s *Service) mapWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrAppointmentNotFound
	case errors.Is(err, repository.ErrSlotTaken):
		s.metrics.SlotConflicts.Inc()
		return ErrSlotTaken
	default:
		return apperrors.Internal(err)
	}
}

// emit never fails the request; the state change is already committed.
func (s *Service) emit(ctx context.Context, eventType string, a *model.Appointment, caller model.Principal) {
	if err := s.events.Emit(ctx, eventType, model.NewAppointmentEvent(a, caller, s.now().UTC())); err != nil {
		log.Ctx(ctx).Warn().
			Err(err).
			Str("event_type", eventType).
			Str("appointment_id", a.ID.String()).
			Msg("failed to record appointment event")
	}
}
