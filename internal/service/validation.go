package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// registerValidations installs the custom tags used by request DTOs and makes
// field paths follow the JSON names clients send.
func registerValidations(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	_ = validate.RegisterValidation("session_type", func(fl validator.FieldLevel) bool {
		return models.SessionType(fl.Field().String()).Valid()
	})
	return validate
}

// validationError converts validator output into a 422 error listing every field.
func validationError(err error, message string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	fields := make([]appErrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, appErrors.FieldError{Field: fieldPath(fe.Namespace()), Message: fieldMessage(fe)})
	}
	return appErrors.Fields(message, fields)
}

// fieldPath drops the root struct name: "SyncSessionsRequest.sessions[0].notes" -> "sessions[0].notes".
func fieldPath(namespace string) string {
	if idx := strings.IndexByte(namespace, '.'); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "session_type":
		names := make([]string, 0, len(models.SessionTypes))
		for _, t := range models.SessionTypes {
			names = append(names, string(t))
		}
		return "must be one of: " + strings.Join(names, ", ")
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
