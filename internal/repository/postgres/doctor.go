package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/repository"
)

const doctorSelect = `
	SELECT
		dp.id, dp.user_id, dp.specialization, dp.experience, dp.availability,
		dp.consultation_fee, dp.about, dp.created_at, dp.updated_at, dp.deleted_at,
		u.id AS "user.id",
		u.name AS "user.name",
		u.email AS "user.email",
		u.phone AS "user.phone"
	FROM doctor_profiles dp
	JOIN users u ON u.id = dp.user_id
	WHERE dp.deleted_at IS NULL
`

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, doctorSelect+` AND dp.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", mapError(err))
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, doctorSelect+` AND dp.user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to get doctor by user: %w", mapError(err))
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	query := doctorSelect
	args := []interface{}{}

	if filters != nil && filters.Specialization != "" {
		args = append(args, filters.Specialization)
		query += fmt.Sprintf(" AND dp.specialization = $%d", len(args))
	}
	query += " ORDER BY dp.created_at ASC"

	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) Update(ctx context.Context, profile *model.DoctorProfile) error {
	query := `
		UPDATE doctor_profiles SET
			specialization = $1,
			experience = $2,
			availability = $3,
			consultation_fee = $4,
			about = $5,
			updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`

	profile.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		profile.Specialization,
		profile.Experience,
		profile.Availability,
		profile.ConsultationFee,
		profile.About,
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor profile: %w", err)
	}
	if err := checkAffected(result); err != nil {
		return fmt.Errorf("failed to update doctor profile: %w", err)
	}
	return nil
}

func (r *doctorRepository) Provision(ctx context.Context, user *model.User, profile *model.DoctorProfile) error {
	query := `
		INSERT INTO doctor_profiles (
			id, user_id, specialization, experience, availability,
			consultation_fee, about, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := createUser(ctx, tx, user); err != nil {
			return err
		}

		if profile.ID == uuid.Nil {
			profile.ID = uuid.New()
		}
		profile.UserID = user.ID
		profile.CreatedAt = user.CreatedAt
		profile.UpdatedAt = user.CreatedAt

		_, err := tx.ExecContext(ctx, query,
			profile.ID,
			profile.UserID,
			profile.Specialization,
			profile.Experience,
			profile.Availability,
			profile.ConsultationFee,
			profile.About,
			profile.CreatedAt,
			profile.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create doctor profile: %w", mapError(err))
		}
		return nil
	})
}

func (r *doctorRepository) Deprovision(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var cancelled []uuid.UUID

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var userID uuid.UUID
		err := tx.GetContext(ctx, &userID,
			`SELECT user_id FROM doctor_profiles WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id)
		if err != nil {
			return fmt.Errorf("failed to lock doctor profile: %w", mapError(err))
		}

		now := time.Now().UTC()
		err = tx.SelectContext(ctx, &cancelled, `
			UPDATE appointments
			SET status = $1, updated_at = $2
			WHERE doctor_profile_id = $3 AND status IN ($4, $5)
			RETURNING id
		`,
			model.AppointmentStatusCancelled,
			now,
			id,
			model.AppointmentStatusPending,
			model.AppointmentStatusApproved,
		)
		if err != nil {
			return fmt.Errorf("failed to cancel doctor appointments: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE doctor_profiles SET deleted_at = $1, updated_at = $1 WHERE id = $2`, now, id); err != nil {
			return fmt.Errorf("failed to delete doctor profile: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET deleted_at = $1, updated_at = $1 WHERE id = $2`, now, userID); err != nil {
			return fmt.Errorf("failed to delete doctor user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}
