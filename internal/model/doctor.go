package model

import (
	"github.com/google/uuid"

	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
)

type Specialization string

const (
	SpecializationCardiology  Specialization = "Cardiology"
	SpecializationDermatology Specialization = "Dermatology"
	SpecializationENT         Specialization = "ENT"
	SpecializationOrthopedics Specialization = "Orthopedics"
	SpecializationPediatrics  Specialization = "Pediatrics"
	SpecializationGeneral     Specialization = "General"
)

var Specializations = []Specialization{
	SpecializationCardiology,
	SpecializationDermatology,
	SpecializationENT,
	SpecializationOrthopedics,
	SpecializationPediatrics,
	SpecializationGeneral,
}

var ErrInvalidSpecialization = apperrors.BadRequest("Invalid specialization", nil)

func ParseSpecialization(s string) (Specialization, error) {
	for _, sp := range Specializations {
		if string(sp) == s {
			return sp, nil
		}
	}
	return "", ErrInvalidSpecialization
}

func (s Specialization) Valid() bool {
	_, err := ParseSpecialization(string(s))
	return err == nil
}

func (s *Specialization) UnmarshalText(text []byte) error {
	parsed, err := ParseSpecialization(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Defaults applied to freshly provisioned doctors.
const (
	DefaultSpecialization  = SpecializationGeneral
	DefaultConsultationFee = 500.0
)

// DoctorProfile is the directory record linked 1:1 to a doctor identity.
type DoctorProfile struct {
	Base
	SoftDelete
	UserID          uuid.UUID      `json:"user_id" db:"user_id"`
	Specialization  Specialization `json:"specialization" db:"specialization"`
	Experience      int            `json:"experience" db:"experience"`
	Availability    bool           `json:"availability" db:"availability"`
	ConsultationFee float64        `json:"consultation_fee" db:"consultation_fee"`
	About           string         `json:"about" db:"about"`
}

// Doctor is a profile joined with its backing identity.
type Doctor struct {
	DoctorProfile
	User UserSummary `json:"user" db:"user"`
}

// DoctorSummary is the doctor projection joined onto appointments.
type DoctorSummary struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	UserID          uuid.UUID      `json:"user_id" db:"user_id"`
	Name            string         `json:"name" db:"name"`
	Email           string         `json:"email" db:"email"`
	Phone           string         `json:"phone" db:"phone"`
	Specialization  Specialization `json:"specialization" db:"specialization"`
	Experience      int            `json:"experience" db:"experience"`
	ConsultationFee float64        `json:"consultation_fee" db:"consultation_fee"`
	Availability    bool           `json:"availability" db:"availability"`
}

type ProvisionDoctorRequest struct {
	Name            string          `json:"name" binding:"required,max=120"`
	Email           string          `json:"email" binding:"required,email"`
	Password        string          `json:"password" binding:"required"`
	Phone           string          `json:"phone" binding:"max=32"`
	Specialization  *Specialization `json:"specialization"`
	Experience      *int            `json:"experience" binding:"omitempty,min=0"`
	ConsultationFee *float64        `json:"consultation_fee" binding:"omitempty,min=0"`
	About           string          `json:"about" binding:"max=2000"`
}

// UpdateDoctorProfileRequest is a partial update, nil fields are left alone.
type UpdateDoctorProfileRequest struct {
	Specialization  *Specialization `json:"specialization"`
	Experience      *int            `json:"experience" binding:"omitempty,min=0"`
	ConsultationFee *float64        `json:"consultation_fee" binding:"omitempty,min=0"`
	About           *string         `json:"about" binding:"omitempty,max=2000"`
	Availability    *bool           `json:"availability"`
}

// Apply copies the set fields onto the profile.
func (r *UpdateDoctorProfileRequest) Apply(p *DoctorProfile) {
	if r.Specialization != nil {
		p.Specialization = *r.Specialization
	}
	if r.Experience != nil {
		p.Experience = *r.Experience
	}
	if r.ConsultationFee != nil {
		p.ConsultationFee = *r.ConsultationFee
	}
	if r.About != nil {
		p.About = *r.About
	}
	if r.Availability != nil {
		p.Availability = *r.Availability
	}
}

type DoctorFilters struct {
	Specialization Specialization
}

// SpecializationQuery binds GET /doctors/specialization.
type SpecializationQuery struct {
	Specialization string `form:"specialization" binding:"omitempty,specialization"`
}
