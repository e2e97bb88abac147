package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/municipal-helpdesk/pkg/util/errorutil"
)

type sample struct {
	FullName string `json:"fullName" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=ADMIN NORMAL"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestStructReportsSpanishFieldMessages(t *testing.T) {
	fields := Struct(sample{FullName: "   ", Email: "nope", Role: "ROOT", Password: "123"})
	require.Len(t, fields, 4)

	assert.Equal(t, apperrors.FieldError{Field: "fullName", Message: "El campo nombre completo es obligatorio"}, fields[0])
	assert.Equal(t, "email", fields[1].Field)
	assert.Equal(t, "El correo electrónico no es válido", fields[1].Message)
	assert.Equal(t, "El campo rol debe ser uno de: ADMIN, NORMAL", fields[2].Message)
	assert.Equal(t, "El campo contraseña debe tener al menos 6 caracteres", fields[3].Message)
}

func TestCheckPassesValidInput(t *testing.T) {
	err := Check(sample{FullName: "Ana", Email: "ana@x.com", Role: "NORMAL", Password: "secreto"}, "Datos inválidos")
	assert.NoError(t, err)
}

func TestCheckWrapsFailures(t *testing.T) {
	err := Check(sample{}, "Datos inválidos")
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, "Datos inválidos", domainErr.Message)
	assert.Len(t, domainErr.Details["fields"], 4)
}
