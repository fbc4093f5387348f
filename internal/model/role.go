package model

import (
	"github.com/google/uuid"

	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
)

// Role is the closed set of identity roles.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

var Roles = []Role{RolePatient, RoleDoctor, RoleAdmin}

var ErrInvalidRole = apperrors.BadRequest("Invalid role", nil)

func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Principal is the resolved caller of a request. It is passed explicitly
// into every service call instead of living on shared request state.
type Principal struct {
	SubjectID uuid.UUID `json:"user_id"`
	Role      Role      `json:"role"`
}

func (p Principal) Is(role Role) bool {
	return p.Role == role
}
