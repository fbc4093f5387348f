package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/SumatiPandey/Doctor-Appointment/pkg/errors"
)

// Rule is a custom string tag. Empty values pass; combine with required.
type Rule struct {
	Check   func(string) bool
	Message string
}

var (
	mu       sync.RWMutex
	messages = map[string]string{}
)

// MissingFieldsMessage is reported for any failed required tag.
const MissingFieldsMessage = "Please provide all required fields"

// RegisterGin installs rules on gin's validator engine and reports field
// names by their json tag.
func RegisterGin(rules map[string]Rule) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return Register(v, rules)
}

func Register(v *validator.Validate, rules map[string]Rule) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	mu.Lock()
	defer mu.Unlock()
	for tag, rule := range rules {
		check := rule.Check
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || check(s)
		}); err != nil {
			return fmt.Errorf("failed to register %s: %w", tag, err)
		}
		messages[tag] = rule.Message
	}
	return nil
}

// Translate turns a binding error into a 400 AppError. Errors that already
// are AppErrors, such as enum decoding failures, pass through.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.BadRequest("Invalid request body", err)
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperrors.BadRequest(MissingFieldsMessage, err)
		}
	}

	fe := verrs[0]
	return apperrors.BadRequest(message(fe), err)
}

func message(fe validator.FieldError) string {
	mu.RLock()
	msg, ok := messages[fe.Tag()]
	mu.RUnlock()
	if ok {
		return msg
	}

	switch fe.Tag() {
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
