package validation

import (
	"fmt"
	"strings"

	"github.com/yourorg/agendacl/internal/models"
)

// ParamError representa un error de validación de parámetros de entrada
type ParamError struct {
	Field   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// maxMonths acota el rango consultable. Cada mes son ~30 días x N locales de
// requests; más allá de un año la corrida tarda horas y el token expira antes.
const maxMonths = 12

// ValidateCredentials valida las credenciales de la cuenta AgendaPro
func ValidateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ParamError{
			Field:   "email",
			Message: "es requerido",
		}
	}

	if !strings.Contains(email, "@") {
		return &ParamError{
			Field:   "email",
			Message: "no tiene formato de correo",
		}
	}

	if password == "" {
		return &ParamError{
			Field:   "password",
			Message: "es requerido",
		}
	}

	return nil
}

// ValidateBookingParams valida los parámetros de una corrida completa
func ValidateBookingParams(params models.BookingParams) error {
	if err := ValidateCredentials(params.Email, params.Password); err != nil {
		return err
	}

	if params.Months < 1 {
		return &ParamError{
			Field:   "months",
			Message: "debe ser al menos 1",
		}
	}

	if params.Months > maxMonths {
		return &ParamError{
			Field:   "months",
			Message: fmt.Sprintf("debe ser a lo más %d", maxMonths),
		}
	}

	return nil
}
