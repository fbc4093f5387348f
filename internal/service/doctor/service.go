package doctor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/SumatiPandey/Doctor-Appointment/internal/config"
	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/repository"
	"github.com/SumatiPandey/Doctor-Appointment/internal/service/event"
	"github.com/SumatiPandey/Doctor-Appointment/internal/service/rbac"
	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/metrics"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/security"
)

var (
	ErrMissingFields         = apperrors.BadRequest("Please provide all required fields", nil)
	ErrDoctorNotFound        = apperrors.NotFound("Doctor", nil)
	ErrDoctorProfileNotFound = apperrors.NotFound("Doctor profile", nil)
	ErrEmailTaken            = apperrors.Conflict("User already exists with this email", nil)
	ErrPasswordTooShort      = apperrors.BadRequest("Password must be at least 8 characters", nil)
)

const listKey = "doctors"

// Service is the doctor directory. Public reads go through a short-lived
// cache that every mutation flushes.
type Service struct {
	repo    repository.DoctorRepository
	hasher  security.PasswordHasher
	policy  *rbac.Policy
	events  event.Emitter
	metrics *metrics.Metrics
	cache   *cache.Cache
	now     func() time.Time
}

func NewService(
	repo repository.DoctorRepository,
	hasher security.PasswordHasher,
	policy *rbac.Policy,
	events event.Emitter,
	metrics *metrics.Metrics,
	cfg config.CacheConfig,
) *Service {
	return &Service{
		repo:    repo,
		hasher:  hasher,
		policy:  policy,
		events:  events,
		metrics: metrics,
		cache:   cache.New(cfg.DoctorTTL, cfg.CleanupInterval),
		now:     time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	return s.list(ctx, "")
}

// ListBySpecialization lists every doctor when spec is empty.
func (s *Service) ListBySpecialization(ctx context.Context, spec string) ([]*model.Doctor, error) {
	if spec == "" {
		return s.list(ctx, "")
	}
	parsed, err := model.ParseSpecialization(spec)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, parsed)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	key := "doctor:" + id.String()
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.Doctor), nil
	}

	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, apperrors.Internal(err)
	}

	s.cache.SetDefault(key, doctor)
	return doctor, nil
}

// GetOwnProfile returns the profile of the calling doctor.
func (s *Service) GetOwnProfile(ctx context.Context, caller model.Principal) (*model.Doctor, error) {
	if err := s.policy.CheckRole(caller, rbac.OpReadOwnDoctorProfile); err != nil {
		return nil, err
	}

	doctor, err := s.own(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, rbac.OpReadOwnDoctorProfile, rbac.Resource{OwnerID: doctor.UserID}); err != nil {
		return nil, err
	}
	return doctor, nil
}

// UpdateOwnProfile applies a partial update to the calling doctor's profile.
func (s *Service) UpdateOwnProfile(ctx context.Context, caller model.Principal, req *model.UpdateDoctorProfileRequest) (*model.Doctor, error) {
	if err := s.policy.CheckRole(caller, rbac.OpUpdateDoctorProfile); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrMissingFields
	}
	if req.Specialization != nil && !req.Specialization.Valid() {
		return nil, model.ErrInvalidSpecialization
	}

	doctor, err := s.own(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, rbac.OpUpdateDoctorProfile, rbac.Resource{OwnerID: doctor.UserID}); err != nil {
		return nil, err
	}

	req.Apply(&doctor.DoctorProfile)
	if err := s.repo.Update(ctx, &doctor.DoctorProfile); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDoctorProfileNotFound
		}
		return nil, apperrors.Internal(err)
	}
	s.cache.Flush()

	return doctor, nil
}

// Provision creates a doctor identity and its profile together. Omitted
// profile fields take the directory defaults.
func (s *Service) Provision(ctx context.Context, caller model.Principal, req *model.ProvisionDoctorRequest) (*model.Doctor, error) {
	if err := s.policy.CheckRole(caller, rbac.OpProvisionDoctor); err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, rbac.OpProvisionDoctor, rbac.Resource{}); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	profile := &model.DoctorProfile{
		Specialization:  model.DefaultSpecialization,
		ConsultationFee: model.DefaultConsultationFee,
		Availability:    true,
		About:           req.About,
	}
	if req.Specialization != nil {
		if !req.Specialization.Valid() {
			return nil, model.ErrInvalidSpecialization
		}
		profile.Specialization = *req.Specialization
	}
	if req.Experience != nil {
		profile.Experience = *req.Experience
	}
	if req.ConsultationFee != nil {
		profile.ConsultationFee = *req.ConsultationFee
	}
	if profile.Experience < 0 || profile.ConsultationFee < 0 {
		return nil, apperrors.BadRequest("Experience and consultation fee must not be negative", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, ErrPasswordTooShort
		}
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Phone:        req.Phone,
		Role:         model.RoleDoctor,
		PasswordHash: hash,
	}

	if err := s.repo.Provision(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, apperrors.Internal(err)
	}
	s.cache.Flush()
	s.metrics.DoctorsProvisioned.Inc()

	doctor := &model.Doctor{DoctorProfile: *profile, User: user.Summary()}
	s.emit(ctx, model.EventDoctorProvisioned, &model.DoctorEvent{
		DoctorID:   doctor.ID,
		UserID:     user.ID,
		Name:       user.Name,
		Email:      user.Email,
		ActorID:    caller.SubjectID,
		OccurredAt: s.now().UTC(),
	})

	return doctor, nil
}

// Deprovision removes the profile and its identity. Active appointments
// with the doctor are cancelled in the same transaction.
func (s *Service) Deprovision(ctx context.Context, caller model.Principal, id uuid.UUID) error {
	if err := s.policy.CheckRole(caller, rbac.OpDeprovisionDoctor); err != nil {
		return err
	}
	if err := s.policy.Authorize(caller, rbac.OpDeprovisionDoctor, rbac.Resource{DoctorProfileID: id}); err != nil {
		return err
	}

	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDoctorNotFound
		}
		return apperrors.Internal(err)
	}

	cancelled, err := s.repo.Deprovision(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDoctorNotFound
		}
		return apperrors.Internal(err)
	}
	s.cache.Flush()
	s.metrics.DoctorsDeprovisioned.Inc()
	s.metrics.AppointmentsCancelled.Add(float64(len(cancelled)))

	s.emit(ctx, model.EventDoctorDeprovisioned, &model.DoctorEvent{
		DoctorID:   doctor.ID,
		UserID:     doctor.UserID,
		Name:       doctor.User.Name,
		Email:      doctor.User.Email,
		Cancelled:  cancelled,
		ActorID:    caller.SubjectID,
		OccurredAt: s.now().UTC(),
	})

	return nil
}

func (s *Service) list(ctx context.Context, spec model.Specialization) ([]*model.Doctor, error) {
	key := listKey
	if spec != "" {
		key += ":" + string(spec)
	}
	if cached, found := s.cache.Get(key); found {
		return cached.([]*model.Doctor), nil
	}

	var filters *model.DoctorFilters
	if spec != "" {
		filters = &model.DoctorFilters{Specialization: spec}
	}

	doctors, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.cache.SetDefault(key, doctors)
	return doctors, nil
}

func (s *Service) own(ctx context.Context, caller model.Principal) (*model.Doctor, error) {
	doctor, err := s.repo.GetByUserID(ctx, caller.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDoctorProfileNotFound
		}
		return nil, apperrors.Internal(err)
	}
	return doctor, nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload *model.DoctorEvent) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		log.Ctx(ctx).Warn().
			Err(err).
			Str("event_type", eventType).
			Str("doctor_id", payload.DoctorID.String()).
			Msg("failed to record doctor event")
	}
}
