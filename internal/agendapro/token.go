package agendapro

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// minTokenValidity es la validez mínima exigida al token recién obtenido.
// Un token que expira a mitad de corrida se rechaza de entrada, no se
// descubre a mitad de pipeline.
const minTokenValidity = 5 * time.Minute

// CheckTokenExpiry decodifica el claim exp del token SIN verificar la firma
// (sólo se inspecciona la expiración, no se confía criptográficamente en él).
//
// Retorna (restante, true, nil) si el claim se pudo decodificar y queda
// validez suficiente. Un token indecodificable o sin exp retorna
// (0, false, nil): expiración desconocida, tolerada a propósito — la
// introspección es consultiva, la autorización real la decide el servidor.
// Si la validez restante es menor a 5 minutos retorna un *AuthError.
func CheckTokenExpiry(token string) (remaining time.Duration, known bool, err error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, perr := parser.ParseUnverified(token, claims); perr != nil {
		return 0, false, nil
	}

	exp, eerr := claims.GetExpirationTime()
	if eerr != nil || exp == nil {
		return 0, false, nil
	}

	remaining = time.Until(exp.Time)
	if remaining < minTokenValidity {
		return remaining, true, &AuthError{
			Reason: fmt.Sprintf("token expires in %ds (< 5 min)", int(remaining.Seconds())),
		}
	}
	return remaining, true, nil
}
