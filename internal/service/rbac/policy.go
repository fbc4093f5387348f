package rbac

import (
	"github.com/google/uuid"

	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
)

var (
	// ErrInsufficientPermissions is returned when the caller's role may not attempt the operation.
	ErrInsufficientPermissions = apperrors.Forbidden("Access denied. Insufficient permissions.")
	// ErrAccessDenied is returned when the role is allowed but the ownership predicate fails.
	ErrAccessDenied = apperrors.Forbidden("Access denied")
)

type Operation string

const (
	OpBookAppointment         Operation = "appointment:book"
	OpListPatientAppointments Operation = "appointment:list_patient"
	OpListDoctorAppointments  Operation = "appointment:list_doctor"
	OpListAllAppointments     Operation = "appointment:list_all"
	OpReadAppointment         Operation = "appointment:read"
	OpUpdateAppointmentStatus Operation = "appointment:update_status"
	OpCancelAppointment       Operation = "appointment:cancel"
	OpProvisionDoctor         Operation = "doctor:provision"
	OpDeprovisionDoctor       Operation = "doctor:deprovision"
	OpReadOwnDoctorProfile    Operation = "doctor:read_own"
	OpUpdateDoctorProfile     Operation = "doctor:update_own"
	OpListUsers               Operation = "user:list"
	OpReadSelf                Operation = "user:read_self"
	OpUpdateSelf              Operation = "user:update_self"
)

// Ownership is the predicate a role must additionally satisfy on the resource.
type Ownership int

const (
	OwnershipNone Ownership = iota
	// OwnershipPatient requires the caller to be the appointment's patient.
	OwnershipPatient
	// OwnershipAssignedDoctor requires the caller's profile to be the appointment's doctor.
	OwnershipAssignedDoctor
	// OwnershipProfile requires the caller to own the doctor profile.
	OwnershipProfile
)

// Rule lists the roles allowed to attempt an operation and the ownership each must satisfy.
type Rule map[model.Role]Ownership

// Resource carries the ownership facts of the record being acted upon.
type Resource struct {
	PatientID       uuid.UUID
	DoctorProfileID uuid.UUID
	// CallerProfileID is the doctor profile of the caller, when the caller is a doctor.
	CallerProfileID uuid.UUID
	// OwnerID is the identity that owns a doctor profile.
	OwnerID uuid.UUID
}

var defaultRules = map[Operation]Rule{
	OpBookAppointment:         {model.RolePatient: OwnershipPatient},
	OpListPatientAppointments: {model.RolePatient: OwnershipNone},
	OpListDoctorAppointments:  {model.RoleDoctor: OwnershipNone},
	OpListAllAppointments:     {model.RoleAdmin: OwnershipNone},
	OpReadAppointment: {
		model.RolePatient: OwnershipPatient,
		model.RoleDoctor:  OwnershipAssignedDoctor,
		model.RoleAdmin:   OwnershipNone,
	},
	OpUpdateAppointmentStatus: {
		model.RoleDoctor: OwnershipAssignedDoctor,
		model.RoleAdmin:  OwnershipNone,
	},
	OpCancelAppointment:    {model.RolePatient: OwnershipPatient},
	OpProvisionDoctor:      {model.RoleAdmin: OwnershipNone},
	OpDeprovisionDoctor:    {model.RoleAdmin: OwnershipNone},
	OpReadOwnDoctorProfile: {model.RoleDoctor: OwnershipProfile},
	OpUpdateDoctorProfile:  {model.RoleDoctor: OwnershipProfile},
	OpListUsers:            {model.RoleAdmin: OwnershipNone},
	OpReadSelf: {
		model.RolePatient: OwnershipNone,
		model.RoleDoctor:  OwnershipNone,
		model.RoleAdmin:   OwnershipNone,
	},
	OpUpdateSelf: {
		model.RolePatient: OwnershipNone,
		model.RoleDoctor:  OwnershipNone,
		model.RoleAdmin:   OwnershipNone,
	},
}

// Policy is the static role/operation/ownership table consulted before every mutation.
type Policy struct {
	rules map[Operation]Rule
}

func NewPolicy() *Policy {
	return &Policy{rules: defaultRules}
}

// CheckRole fails when the caller's role is not listed for op. Unknown
// operations are denied.
func (p *Policy) CheckRole(principal model.Principal, op Operation) error {
	rule, ok := p.rules[op]
	if !ok {
		return ErrInsufficientPermissions
	}
	if _, ok := rule[principal.Role]; !ok {
		return ErrInsufficientPermissions
	}
	return nil
}

// Authorize checks the role and then the ownership predicate against res.
func (p *Policy) Authorize(principal model.Principal, op Operation, res Resource) error {
	if err := p.CheckRole(principal, op); err != nil {
		return err
	}

	switch p.rules[op][principal.Role] {
	case OwnershipNone:
		return nil
	case OwnershipPatient:
		if res.PatientID != uuid.Nil && res.PatientID == principal.SubjectID {
			return nil
		}
	case OwnershipAssignedDoctor:
		if res.CallerProfileID != uuid.Nil && res.CallerProfileID == res.DoctorProfileID {
			return nil
		}
	case OwnershipProfile:
		if res.OwnerID != uuid.Nil && res.OwnerID == principal.SubjectID {
			return nil
		}
	}
	return ErrAccessDenied
}

// Roles lists the roles allowed to attempt op.
func (p *Policy) Roles(op Operation) []model.Role {
	rule := p.rules[op]
	roles := make([]model.Role, 0, len(rule))
	for _, r := range model.Roles {
		if _, ok := rule[r]; ok {
			roles = append(roles, r)
		}
	}
	return roles
}
