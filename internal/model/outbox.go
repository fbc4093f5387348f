package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusProcessed  OutboxStatus = "PROCESSED"
	OutboxStatusFailed     OutboxStatus = "FAILED"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// Event types recorded by the scheduler and the directory.
const (
	EventAppointmentBooked        = "appointment.booked"
	EventAppointmentStatusUpdated = "appointment.status_updated"
	EventAppointmentCancelled     = "appointment.cancelled"
	EventDoctorProvisioned        = "doctor.provisioned"
	EventDoctorDeprovisioned      = "doctor.deprovisioned"
)

// AppointmentEvent is the payload of every appointment.* event. It carries
// enough of the joined record for consumers to act without a lookup.
type AppointmentEvent struct {
	AppointmentID   uuid.UUID         `json:"appointment_id"`
	Status          AppointmentStatus `json:"status"`
	AppointmentDate Date              `json:"appointment_date"`
	TimeSlot        TimeSlot          `json:"time_slot"`
	Notes           string            `json:"notes,omitempty"`
	Patient         UserSummary       `json:"patient"`
	DoctorName      string            `json:"doctor_name"`
	DoctorID        uuid.UUID         `json:"doctor_id"`
	ActorID         uuid.UUID         `json:"actor_id"`
	ActorRole       Role              `json:"actor_role,omitempty"`
	OccurredAt      time.Time         `json:"occurred_at"`
}

func NewAppointmentEvent(a *Appointment, actor Principal, at time.Time) *AppointmentEvent {
	return &AppointmentEvent{
		AppointmentID:   a.ID,
		Status:          a.Status,
		AppointmentDate: a.AppointmentDate,
		TimeSlot:        a.TimeSlot,
		Notes:           a.Notes,
		Patient:         a.Patient,
		DoctorName:      a.Doctor.Name,
		DoctorID:        a.DoctorID,
		ActorID:         actor.SubjectID,
		ActorRole:       actor.Role,
		OccurredAt:      at,
	}
}

// DoctorEvent is the payload of doctor.* events.
type DoctorEvent struct {
	DoctorID   uuid.UUID   `json:"doctor_id"`
	UserID     uuid.UUID   `json:"user_id"`
	Name       string      `json:"name,omitempty"`
	Email      string      `json:"email,omitempty"`
	Cancelled  []uuid.UUID `json:"cancelled_appointments,omitempty"`
	ActorID    uuid.UUID   `json:"actor_id"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// EventEnvelope is what the outbox processor publishes on the broker.
type EventEnvelope struct {
	ID      uuid.UUID       `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
