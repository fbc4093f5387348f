package user

import (
	"context"
	"errors"
	"strings"

	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/repository"
	"github.com/SumatiPandey/Doctor-Appointment/internal/service/rbac"
	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
)

var (
	ErrUserNotFound = apperrors.NotFound("User", nil)
	ErrEmptyName    = apperrors.BadRequest("Name must not be empty", nil)
)

type UserServicer interface {
	GetMe(ctx context.Context, caller model.Principal) (*model.User, error)
	UpdateMe(ctx context.Context, caller model.Principal, req *model.UpdateUserRequest) (*model.User, error)
	List(ctx context.Context, caller model.Principal, role string) ([]*model.User, error)
}

type Service struct {
	repo   repository.UserRepository
	policy *rbac.Policy
}

func NewService(repo repository.UserRepository, policy *rbac.Policy) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
	}
}

func (s *Service) GetMe(ctx context.Context, caller model.Principal) (*model.User, error) {
	if err := s.policy.CheckRole(caller, rbac.OpReadSelf); err != nil {
		return nil, err
	}
	return s.get(ctx, caller)
}

// UpdateMe changes the caller's name and phone. Email and role are fixed.
func (s *Service) UpdateMe(ctx context.Context, caller model.Principal, req *model.UpdateUserRequest) (*model.User, error) {
	if err := s.policy.CheckRole(caller, rbac.OpUpdateSelf); err != nil {
		return nil, err
	}

	user, err := s.get(ctx, caller)
	if err != nil {
		return nil, err
	}

	if req != nil && req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		user.Name = name
	}
	if req != nil && req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// List returns every identity, optionally narrowed to one role.
func (s *Service) List(ctx context.Context, caller model.Principal, role string) ([]*model.User, error) {
	if err := s.policy.CheckRole(caller, rbac.OpListUsers); err != nil {
		return nil, err
	}

	filters := &model.UserFilters{}
	if role != "" {
		parsed, err := model.ParseRole(role)
		if err != nil {
			return nil, err
		}
		filters.Role = parsed
	}

	users, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}

func (s *Service) get(ctx context.Context, caller model.Principal) (*model.User, error) {
	user, err := s.repo.Get(ctx, caller.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}
