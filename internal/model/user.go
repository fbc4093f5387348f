package model

import (
	"github.com/google/uuid"
)

// User represents a system identity. Patients self-register, doctors are
// provisioned by admins, admins are seeded from the command line.
type User struct {
	Base
	SoftDelete
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	Phone        string `json:"phone" db:"phone"`
	Role         Role   `json:"role" db:"role"`
	PasswordHash string `json:"-" db:"password_hash"`
}

// Summary is the public projection of a user joined onto other records.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
	}
}

// UserSummary carries the identity fields other records are joined with.
type UserSummary struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Name  string    `json:"name" db:"name"`
	Email string    `json:"email" db:"email"`
	Phone string    `json:"phone" db:"phone"`
}

// UpdateUserRequest represents the self-service profile update
type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=120"`
	Phone *string `json:"phone" binding:"omitempty,max=32"`
}

type UserFilters struct {
	Role Role
}
