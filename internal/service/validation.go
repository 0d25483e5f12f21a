package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/daprotis-api/internal/models"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
)

const minPhoneDigits = 7

// NewValidator returns a validator that reports fields by their JSON name and
// knows the phone and weekday rules.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneDigits(fl.Field().String()) >= minPhoneDigits
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return models.WeekdayOrder(fl.Field().String()) >= 0
	})
	return v
}

func phoneDigits(raw string) int {
	count := 0
	for _, r := range raw {
		if unicode.IsDigit(r) {
			count++
		}
	}
	return count
}

// validationError converts validator output into a VALIDATION_ERROR carrying
// one message per offending field.
func validationError(err error, message string) *appErrors.Error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, exists := details[fe.Field()]; !exists {
			details[fe.Field()] = fieldMessage(fe)
		}
	}
	appErr := appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, message), details)
	appErr.Err = err
	return appErr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obligatorio"
	case "email":
		return "correo electrónico inválido"
	case "min":
		return fmt.Sprintf("debe tener al menos %s caracteres", fe.Param())
	case "max":
		return fmt.Sprintf("no puede superar %s caracteres", fe.Param())
	case "eqfield":
		return "las contraseñas no coinciden"
	case "datetime":
		return "usar el formato AAAA-MM-DD"
	case "phone":
		return fmt.Sprintf("debe contener al menos %d dígitos", minPhoneDigits)
	case "weekday":
		return "día inválido, usar Lunes a Sábado"
	case "gt":
		return fmt.Sprintf("debe ser mayor a %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("valores permitidos: %s", fe.Param())
	default:
		return "valor inválido"
	}
}

// fieldError builds a single-field validation failure outside the validator.
func fieldError(field, detail, message string) *appErrors.Error {
	return appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, message), map[string]string{field: detail})
}
