package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
)

type request struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"omitempty,email"`
	Colour string `json:"colour" binding:"colour"`
	Bio    string `json:"bio" binding:"max=5"`
}

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, Register(v, map[string]Rule{
		"colour": {
			Check:   func(s string) bool { return s == "red" || s == "blue" },
			Message: "Invalid colour",
		},
	}))
	return v
}

func TestTranslate(t *testing.T) {
	v := newValidate(t)

	tests := []struct {
		name string
		req  request
		want string
	}{
		{"missing required", request{Colour: "red"}, MissingFieldsMessage},
		{"custom rule", request{Name: "a", Colour: "green"}, "Invalid colour"},
		{"empty passes custom rule", request{Name: "a"}, ""},
		{"email", request{Name: "a", Email: "nope"}, "Invalid email format"},
		{"max uses json name", request{Name: "a", Bio: "too long"}, "bio must be at most 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Translate(v.Struct(tt.req))
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr := apperrors.As(err)
			assert.Equal(t, 400, appErr.StatusCode())
			assert.Equal(t, tt.want, appErr.Message)
		})
	}
}

func TestTranslate_PassesAppErrorsThrough(t *testing.T) {
	sentinel := apperrors.BadRequest("Invalid time slot", nil)
	assert.Same(t, sentinel, Translate(sentinel))

	err := Translate(errors.New("unexpected EOF"))
	assert.Equal(t, "Invalid request body", apperrors.As(err).Message)
}
