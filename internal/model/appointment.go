package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusApproved  AppointmentStatus = "approved"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusApproved,
	AppointmentStatusRejected,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
}

var ErrInvalidStatus = apperrors.BadRequest("Invalid status", nil)

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	for _, st := range AppointmentStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

func (s AppointmentStatus) Valid() bool {
	_, err := ParseAppointmentStatus(string(s))
	return err == nil
}

// OccupiesSlot reports whether an appointment in this status holds its
// (doctor, date, slot) triple.
func (s AppointmentStatus) OccupiesSlot() bool {
	return s != AppointmentStatusCancelled
}

// IsActive reports whether the appointment still awaits the visit.
func (s AppointmentStatus) IsActive() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusApproved
}

func (s *AppointmentStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseAppointmentStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// TimeSlot is one of the fixed daily consultation slots.
type TimeSlot string

const (
	TimeSlot0900 TimeSlot = "9:00 AM"
	TimeSlot1000 TimeSlot = "10:00 AM"
	TimeSlot1100 TimeSlot = "11:00 AM"
	TimeSlot1400 TimeSlot = "2:00 PM"
	TimeSlot1500 TimeSlot = "3:00 PM"
	TimeSlot1600 TimeSlot = "4:00 PM"
)

// TimeSlots is ordered from the first slot of the day to the last.
var TimeSlots = []TimeSlot{
	TimeSlot0900,
	TimeSlot1000,
	TimeSlot1100,
	TimeSlot1400,
	TimeSlot1500,
	TimeSlot1600,
}

var timeSlotAliases = map[string]TimeSlot{
	"09:00": TimeSlot0900,
	"10:00": TimeSlot1000,
	"11:00": TimeSlot1100,
	"14:00": TimeSlot1400,
	"15:00": TimeSlot1500,
	"16:00": TimeSlot1600,
}

var ErrInvalidTimeSlot = apperrors.BadRequest("Invalid time slot", nil)

// ParseTimeSlot accepts the slot label or its 24h alias.
func ParseTimeSlot(s string) (TimeSlot, error) {
	s = strings.TrimSpace(s)
	for _, slot := range TimeSlots {
		if string(slot) == s {
			return slot, nil
		}
	}
	if slot, ok := timeSlotAliases[s]; ok {
		return slot, nil
	}
	return "", ErrInvalidTimeSlot
}

func (t TimeSlot) Valid() bool {
	_, err := ParseTimeSlot(string(t))
	return err == nil
}

// Index is the position of the slot within the day, -1 when unknown.
func (t TimeSlot) Index() int {
	for i, slot := range TimeSlots {
		if slot == t {
			return i
		}
	}
	return -1
}

// UnmarshalText leaves an empty slot unset so it reports as missing.
func (t *TimeSlot) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*t = ""
		return nil
	}
	parsed, err := ParseTimeSlot(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

const DateLayout = "2006-01-02"

var ErrInvalidDate = apperrors.BadRequest("Invalid appointment date", nil)

// Date is a calendar day without a time-of-day component.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp truncated to its UTC day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return NewDate(t.Year(), t.Month(), t.Day()), nil
	}
	return Date{}, ErrInvalidDate
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	return d.UnmarshalText([]byte(s))
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		v = v.UTC()
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Appointment is always returned joined with both participants.
type Appointment struct {
	Base
	PatientID       uuid.UUID         `json:"patient_id" db:"patient_id"`
	DoctorID        uuid.UUID         `json:"doctor_id" db:"doctor_profile_id"`
	AppointmentDate Date              `json:"appointment_date" db:"appointment_date"`
	TimeSlot        TimeSlot          `json:"time_slot" db:"time_slot"`
	Reason          string            `json:"reason" db:"reason"`
	Status          AppointmentStatus `json:"status" db:"status"`
	Notes           string            `json:"notes" db:"notes"`
	Patient         UserSummary       `json:"patient" db:"patient"`
	Doctor          DoctorSummary     `json:"doctor" db:"doctor"`
}

type BookAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	AppointmentDate *Date     `json:"appointment_date" binding:"required"`
	TimeSlot        TimeSlot  `json:"time_slot" binding:"required"`
	Reason          string    `json:"reason" binding:"max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status"`
	Notes  string            `json:"notes" binding:"max=2000"`
}

type AppointmentFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
}

// SlotKey identifies the resource guarded by the active-slot uniqueness rule.
type SlotKey struct {
	DoctorID uuid.UUID
	Date     Date
	TimeSlot TimeSlot
}

func (a *Appointment) SlotKey() SlotKey {
	return SlotKey{DoctorID: a.DoctorID, Date: a.AppointmentDate, TimeSlot: a.TimeSlot}
}
