// Package handlertest mounts resource handlers behind the real auth and
// error middleware for handler tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/SumatiPandey/Doctor-Appointment/internal/handler"
	"github.com/SumatiPandey/Doctor-Appointment/internal/middleware"
	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/service/rbac"
	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
)

// Callers maps bearer tokens to principals.
type Callers map[string]model.Principal

func (c Callers) Resolve(_ context.Context, token string) (model.Principal, error) {
	if token == "" {
		return model.Principal{}, apperrors.Unauthorized("No authentication token, access denied", nil)
	}
	p, ok := c[token]
	if !ok {
		return model.Principal{}, apperrors.Unauthorized("Token is not valid", nil)
	}
	return p, nil
}

// DefaultCallers has one principal per role, keyed by the role name.
func DefaultCallers() Callers {
	return Callers{
		"patient": {SubjectID: uuid.New(), Role: model.RolePatient},
		"doctor":  {SubjectID: uuid.New(), Role: model.RoleDoctor},
		"admin":   {SubjectID: uuid.New(), Role: model.RoleAdmin},
	}
}

// NewRouter registers routes under /api the same way the server does.
func NewRouter(t *testing.T, routes handler.Routes, callers Callers) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	auth := middleware.NewAuthMiddleware(callers, rbac.NewPolicy())

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	api := r.Group("/api")
	protected := api.Group("")
	protected.Use(auth.Authenticate())
	routes.RegisterRoutes(api, protected, auth.RequireOperation)
	return r
}

// Do performs a request with an optional bearer token and JSON body.
func Do(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, handler.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handler.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}
