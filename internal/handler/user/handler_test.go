package user

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/SumatiPandey/Doctor-Appointment/internal/handler/handlertest"
	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetMe(ctx context.Context, caller model.Principal) (*model.User, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateMe(ctx context.Context, caller model.Principal, req *model.UpdateUserRequest) (*model.User, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, caller model.Principal, role string) ([]*model.User, error) {
	args := m.Called(ctx, caller, role)
	return args.Get(0).([]*model.User), args.Error(1)
}

func TestMe(t *testing.T) {
	svc := new(MockUserService)
	callers := handlertest.DefaultCallers()
	r := handlertest.NewRouter(t, NewHandler(svc), callers)

	patient := callers["patient"]
	me := &model.User{Base: model.Base{ID: patient.SubjectID}, Name: "Asha", Role: model.RolePatient}
	svc.On("GetMe", mock.Anything, patient).Return(me, nil).Once()
	svc.On("UpdateMe", mock.Anything, patient, mock.MatchedBy(func(req *model.UpdateUserRequest) bool {
		return req.Name != nil && *req.Name == "Asha K" && req.Phone == nil
	})).Return(me, nil).Once()

	w, resp := handlertest.Do(t, r, http.MethodGet, "/api/users/me", "patient", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Asha", resp.Data.(map[string]interface{})["name"])

	w, resp = handlertest.Do(t, r, http.MethodPut, "/api/users/me", "patient", map[string]string{"name": "Asha K"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Profile updated successfully", resp.Message)

	svc.AssertExpectations(t)
}

func TestListUsers(t *testing.T) {
	svc := new(MockUserService)
	callers := handlertest.DefaultCallers()
	r := handlertest.NewRouter(t, NewHandler(svc), callers)

	svc.On("List", mock.Anything, callers["admin"], "doctor").
		Return([]*model.User{{Base: model.Base{ID: uuid.New()}, Role: model.RoleDoctor}}, nil).Once()

	w, resp := handlertest.Do(t, r, http.MethodGet, "/api/auth/users?role=doctor", "admin", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
	assert.Len(t, data["users"], 1)

	w, resp = handlertest.Do(t, r, http.MethodGet, "/api/auth/users", "doctor", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Insufficient permissions.", resp.Message)

	svc.AssertExpectations(t)
}
