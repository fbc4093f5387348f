package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/repository"
)

// appointmentSelect joins both participants. Doctor identities are joined
// without a deleted_at filter so history keeps resolving after deprovisioning.
const appointmentSelect = `
	SELECT
		a.id, a.patient_id, a.doctor_profile_id, a.appointment_date, a.time_slot,
		a.reason, a.status, a.notes, a.created_at, a.updated_at,
		p.id AS "patient.id",
		p.name AS "patient.name",
		p.email AS "patient.email",
		p.phone AS "patient.phone",
		dp.id AS "doctor.id",
		dp.user_id AS "doctor.user_id",
		du.name AS "doctor.name",
		du.email AS "doctor.email",
		du.phone AS "doctor.phone",
		dp.specialization AS "doctor.specialization",
		dp.experience AS "doctor.experience",
		dp.consultation_fee AS "doctor.consultation_fee",
		dp.availability AS "doctor.availability"
	FROM appointments a
	JOIN users p ON p.id = a.patient_id
	JOIN doctor_profiles dp ON dp.id = a.doctor_profile_id
	JOIN users du ON du.id = dp.user_id
`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_profile_id, appointment_date, time_slot,
			reason, status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now().UTC()
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.AppointmentDate,
		appointment.TimeSlot,
		appointment.Reason,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", mapError(err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, appointmentSelect+` WHERE a.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", mapError(err))
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := appointmentSelect + ` WHERE 1=1`
	args := []interface{}{}

	if filters != nil {
		if filters.PatientID != uuid.Nil {
			args = append(args, filters.PatientID)
			query += fmt.Sprintf(" AND a.patient_id = $%d", len(args))
		}
		if filters.DoctorID != uuid.Nil {
			args = append(args, filters.DoctorID)
			query += fmt.Sprintf(" AND a.doctor_profile_id = $%d", len(args))
		}
	}
	query += " ORDER BY a.created_at ASC"

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) SlotTaken(ctx context.Context, key model.SlotKey) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_profile_id = $1
			AND appointment_date = $2
			AND time_slot = $3
			AND status <> $4
		)
	`

	var taken bool
	err := r.db.GetContext(ctx, &taken, query,
		key.DoctorID, key.Date, key.TimeSlot, model.AppointmentStatusCancelled)
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return taken, nil
}

// UpdateStatus sets the status and overwrites notes only when notes is non-empty.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, notes string) error {
	query := `
		UPDATE appointments SET
			status = $1,
			notes = COALESCE(NULLIF($2, ''), notes),
			updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, status, notes, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", mapError(err))
	}
	if err := checkAffected(result); err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	return nil
}
