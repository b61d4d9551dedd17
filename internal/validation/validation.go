// Package validation checks decoded request bodies and path parameters
// before any data access happens. Every failure is an apperror validation
// error listing each violated field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sakif/devdesk/internal/apperror"
)

const msgEmptyPatch = "At least one field must be provided to update"

// Patch is implemented by update payloads. An empty patch is rejected
// before field rules run.
type Patch interface {
	Empty() bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// notblank: non-empty after trimming whitespace.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// optionalurl: empty, or a valid URL. Unlike omitempty it also applies
	// to the value behind a pointer, so a patch can clear the field.
	_ = v.RegisterValidation("optionalurl", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || v.Var(s, "url") == nil
	})

	return v
}

// Struct validates s and returns nil or an *apperror.AppError.
func Struct(s any) error {
	if p, ok := s.(Patch); ok && p.Empty() {
		return apperror.ValidationFailed("body", msgEmptyPatch)
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		fields[name] = fieldMessage(fe)
	}
	return apperror.InvalidFields(fields)
}

// UUIDParam checks that a path parameter is a well-formed UUID.
func UUIDParam(name, value string) error {
	if _, err := uuid.Parse(value); err != nil || strings.TrimSpace(value) == "" {
		return apperror.ValidationFailed(name, fmt.Sprintf("Invalid %s format", name))
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "oneof":
		return fmt.Sprintf("Invalid %s. Allowed: %s", field, strings.Join(strings.Fields(param), ", "))
	case "uuid":
		return fmt.Sprintf("Invalid %s format", field)
	case "url", "http_url", "optionalurl":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}
