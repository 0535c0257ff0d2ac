package agendapro

import (
	"fmt"
	"net/http"
)

// AuthError indica que el login no produjo una credencial de sesión usable
// (credenciales incorrectas, flujo de login cambiado, o token por expirar).
// No se reintenta: la corrida aborta y el error llega al caller tal cual.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "auth: " + e.Reason
}

// RemoteError indica una respuesta no-2xx de la API de AgendaPro que no fue
// resuelta por la política de reintentos (reintentos agotados, o un status
// no reintentable). Conserva el código HTTP para el caller.
type RemoteError struct {
	Status int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("API request failed: %d %s", e.Status, http.StatusText(e.Status))
}
