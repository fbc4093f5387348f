package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/repository"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/auth"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/security"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.User), args.Error(1)
}

const testSecret = "test-secret"

func newTestService(repo *MockUserRepository) (*Service, auth.JWTService, security.PasswordHasher) {
	jwtSvc := auth.NewJWTService(testSecret, "test", time.Hour)
	hasher := security.NewBcryptHasher(4)
	return NewService(repo, jwtSvc, hasher), jwtSvc, hasher
}

func TestRegister_AlwaysCreatesPatient(t *testing.T) {
	repo := new(MockUserRepository)
	svc, jwtSvc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RolePatient && u.Email == "p@example.com" && u.PasswordHash != "password123"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = uuid.New()
	}).Return(nil).Once()

	resp, err := svc.Register(ctx, &model.RegisterRequest{
		Name:     "Pat",
		Email:    "p@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, resp.User.Role)

	claims, err := jwtSvc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "patient", claims.Role)

	repo.AssertExpectations(t)
}

func TestRegister_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing fields", func(t *testing.T) {
		svc, _, _ := newTestService(new(MockUserRepository))
		_, err := svc.Register(ctx, &model.RegisterRequest{Email: "p@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("short password", func(t *testing.T) {
		svc, _, _ := newTestService(new(MockUserRepository))
		_, err := svc.Register(ctx, &model.RegisterRequest{Name: "Pat", Email: "p@example.com", Password: "short"})
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _, _ := newTestService(repo)
		repo.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)

		_, err := svc.Register(ctx, &model.RegisterRequest{Name: "Pat", Email: "P@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _, hasher := newTestService(repo)
	ctx := context.Background()

	hash, err := hasher.Hash("password123")
	require.NoError(t, err)
	user := &model.User{Base: model.Base{ID: uuid.New()}, Email: "d@example.com", Role: model.RoleDoctor, PasswordHash: hash}

	repo.On("GetByEmail", ctx, "d@example.com").Return(user, nil)
	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound)

	resp, err := svc.Login(ctx, &model.LoginRequest{Email: "d@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "d@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "ghost@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolve(t *testing.T) {
	repo := new(MockUserRepository)
	svc, jwtSvc, _ := newTestService(repo)
	ctx := context.Background()

	user := &model.User{Base: model.Base{ID: uuid.New()}, Role: model.RoleAdmin}
	gone := uuid.New()
	repo.On("Get", ctx, user.ID).Return(user, nil)
	repo.On("Get", ctx, gone).Return(nil, repository.ErrNotFound)

	token, err := jwtSvc.GenerateToken(user.ID, "admin")
	require.NoError(t, err)

	principal, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, model.Principal{SubjectID: user.ID, Role: model.RoleAdmin}, principal)

	_, err = svc.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = svc.Resolve(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	forged, err := auth.NewJWTService("other-secret", "test", time.Hour).GenerateToken(user.ID, "admin")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, forged)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	escalated, err := jwtSvc.GenerateToken(user.ID, "superuser")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, escalated)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	stale, err := jwtSvc.GenerateToken(gone, "doctor")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, stale)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	expired, err := auth.NewJWTService(testSecret, "test", -time.Minute).GenerateToken(user.ID, "admin")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, expired)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCreateAdmin(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleAdmin
	})).Return(nil).Once()

	user, err := svc.CreateAdmin(ctx, "Root", "root@example.com", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
	repo.AssertExpectations(t)
}
