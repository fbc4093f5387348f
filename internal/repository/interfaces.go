package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique identity column (email) is taken.
	ErrDuplicate = errors.New("duplicate record")
	// ErrSlotTaken is returned when the active-slot unique index rejects an insert or update.
	ErrSlotTaken = errors.New("time slot already booked")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
	}

	DoctorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error)
		Update(ctx context.Context, profile *model.DoctorProfile) error
		// Provision creates the doctor identity and its profile in one transaction.
		Provision(ctx context.Context, user *model.User, profile *model.DoctorProfile) error
		// Deprovision cancels the doctor's active appointments and soft deletes
		// the profile and its identity in one transaction. It returns the ids of
		// the appointments it cancelled.
		Deprovision(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// SlotTaken reports whether an appointment other than a cancelled one holds the slot.
		SlotTaken(ctx context.Context, key model.SlotKey) (bool, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, notes string) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending moves up to limit events to processing and returns them.
		// Besides pending events it reclaims processing events whose claim is
		// older than lease, which is what a worker dying mid-batch leaves behind.
		ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
