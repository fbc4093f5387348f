package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SoftDelete marks records that are hidden rather than removed.
type SoftDelete struct {
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// IsDeleted reports whether the record has been soft deleted.
func (s SoftDelete) IsDeleted() bool {
	return s.DeletedAt != nil
}

// ListResult is the payload shape of every collection endpoint.
func ListResult(key string, items interface{}, count int) map[string]interface{} {
	return map[string]interface{}{
		"count": count,
		key:     items,
	}
}
