package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/SumatiPandey/Doctor-Appointment/internal/repository"
)

const (
	uniqueViolation = pq.ErrorCode("23505")

	// Name of the partial unique index over active appointments.
	activeSlotConstraint = "appointments_active_slot_key"
)

var errNotFound = repository.ErrNotFound

// mapError translates driver errors into repository sentinels. Anything it
// does not recognise is returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if pqErr.Constraint == activeSlotConstraint {
			return repository.ErrSlotTaken
		}
		return repository.ErrDuplicate
	}

	return err
}
