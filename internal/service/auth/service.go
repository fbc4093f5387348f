package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/repository"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/auth"
	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/security"
)

var (
	ErrMissingFields      = apperrors.BadRequest("Please provide all required fields", nil)
	ErrInvalidCredentials = apperrors.Unauthorized("Invalid credentials", nil)
	ErrNoToken            = apperrors.Unauthorized("No authentication token, access denied", nil)
	ErrTokenInvalid       = apperrors.Unauthorized("Token is not valid", nil)
	ErrEmailTaken         = apperrors.Conflict("User already exists with this email", nil)
	ErrPasswordTooShort   = apperrors.BadRequest("Password must be at least 8 characters", nil)
	ErrUserNotFound       = apperrors.NotFound("User", nil)
)

// Service issues and resolves bearer tokens.
type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
	}
}

// Register creates a patient. Other roles are never self-assigned.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, ErrMissingFields
	}

	user, err := s.createUser(ctx, req.Name, req.Email, req.Password, req.Phone, model.RolePatient)
	if err != nil {
		return nil, err
	}

	return s.respond(user)
}

// CreateAdmin seeds an admin identity. It is only reachable from the ctl binary.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password, phone string) (*model.User, error) {
	return s.createUser(ctx, name, email, password, phone, model.RoleAdmin)
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if req == nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		log.Ctx(ctx).Debug().Str("user_id", user.ID.String()).Msg("password mismatch")
		return nil, ErrInvalidCredentials
	}

	return s.respond(user)
}

// Resolve turns a bearer token into the calling principal. The identity must
// still exist, so tokens of deprovisioned doctors stop working immediately.
func (s *Service) Resolve(ctx context.Context, token string) (model.Principal, error) {
	if token == "" {
		return model.Principal{}, ErrNoToken
	}

	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return model.Principal{}, ErrTokenInvalid
	}

	role, err := model.ParseRole(claims.Role)
	if err != nil || claims.UserID == uuid.Nil {
		return model.Principal{}, ErrTokenInvalid
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Principal{}, ErrTokenInvalid
		}
		return model.Principal{}, apperrors.Internal(err)
	}
	if user.Role != role {
		return model.Principal{}, ErrTokenInvalid
	}

	return model.Principal{SubjectID: user.ID, Role: user.Role}, nil
}

// Profile returns the identity behind the principal.
func (s *Service) Profile(ctx context.Context, caller model.Principal) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, caller.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *Service) createUser(ctx context.Context, name, email, password, phone string, role model.Role) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, ErrPasswordTooShort
		}
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, apperrors.Internal(err)
	}

	log.Ctx(ctx).Info().
		Str("user_id", user.ID.String()).
		Str("role", string(role)).
		Msg("user created")
	return user, nil
}

func (s *Service) respond(user *model.User) (*model.AuthResponse, error) {
	token, err := s.jwtSvc.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.AuthResponse{Token: token, User: user}, nil
}
