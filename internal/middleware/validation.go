package middleware

import (
	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/validator"
)

// ValidationRules are the binding tags for the closed domain enums.
func ValidationRules() map[string]validator.Rule {
	return map[string]validator.Rule{
		"specialization": {
			Check:   func(s string) bool { return model.Specialization(s).Valid() },
			Message: model.ErrInvalidSpecialization.Message,
		},
		"timeslot": {
			Check:   func(s string) bool { _, err := model.ParseTimeSlot(s); return err == nil },
			Message: model.ErrInvalidTimeSlot.Message,
		},
		"appointment_status": {
			Check:   func(s string) bool { return model.AppointmentStatus(s).Valid() },
			Message: model.ErrInvalidStatus.Message,
		},
		"role": {
			Check:   func(s string) bool { return model.Role(s).Valid() },
			Message: model.ErrInvalidRole.Message,
		},
	}
}

// RegisterValidators installs ValidationRules on gin's binding engine.
func RegisterValidators() error {
	return validator.RegisterGin(ValidationRules())
}
