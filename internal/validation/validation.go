// Package validation runs struct-tag validation and renders failures as Spanish per-field
// messages keyed by the JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/municipal-helpdesk/pkg/util/errorutil"
)

var (
	once     sync.Once
	instance *validator.Validate
)

var fieldLabels = map[string]string{
	"fullName":      "nombre completo",
	"username":      "usuario",
	"email":         "correo electrónico",
	"password":      "contraseña",
	"area":          "área",
	"role":          "rol",
	"service":       "servicio",
	"description":   "descripción",
	"folio":         "folio",
	"status":        "estado",
	"newPassword":   "nueva contraseña",
	"adminPassword": "contraseña de administrador",
}

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return sf.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		instance = v
	})
	return instance
}

// Struct validates s and returns one message per failing field, in declaration order.
func Struct(s any) []apperrors.FieldError {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperrors.FieldError{{Field: "body", Message: "Solicitud inválida"}}
	}
	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: message(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return fields
}

// Check validates s and wraps failures in a VALIDATION_FAILED error.
func Check(s any, summary string) error {
	if fields := Struct(s); len(fields) > 0 {
		return apperrors.NewFieldValidationError(summary, fields)
	}
	return nil
}

func message(field, rule, param string) string {
	label, ok := fieldLabels[field]
	if !ok {
		label = field
	}
	switch rule {
	case "required", "notblank":
		return fmt.Sprintf("El campo %s es obligatorio", label)
	case "email":
		return "El correo electrónico no es válido"
	case "min":
		return fmt.Sprintf("El campo %s debe tener al menos %s caracteres", label, param)
	case "max":
		return fmt.Sprintf("El campo %s debe tener como máximo %s caracteres", label, param)
	case "oneof":
		return fmt.Sprintf("El campo %s debe ser uno de: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "alphanumunicode", "alphanum":
		return fmt.Sprintf("El campo %s solo admite letras y números", label)
	default:
		return fmt.Sprintf("El campo %s no es válido", label)
	}
}
