package agendapro

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// ============================================================================
// LOGIN INTERACTIVO CONTRA AGENDAPRO
// ============================================================================
// AgendaPro no expone API pública: el token de sesión sólo existe dentro de
// una sesión de navegador autenticada. Se abre Chrome headless, se completa
// el formulario de login y se extrae la cookie de autorización en memoria.
// Es la operación más cara de toda la pipeline: debe ocurrir a lo más una
// vez por corrida.

// AuthCookieName es la cookie que AgendaPro deja tras un login exitoso.
const AuthCookieName = "ap_cognito_authorization"

// Listas de selectores tolerantes para absorber variaciones menores del
// markup de la página de login. Se unen con coma (lista de selectores CSS:
// querySelector toma la primera coincidencia en orden de documento).
var (
	EmailSelectors = []string{
		`input[type="email"]`,
		`input[name="email"]`,
		`input[name="user[email]"]`,
		`input#user_email`,
		`input[placeholder*="mail"]`,
		`input[placeholder*="correo"]`,
	}
	PasswordSelectors = []string{
		`input[type="password"]`,
	}
	SubmitSelectors = []string{
		`button[type="submit"]`,
		`input[type="submit"]`,
	}
)

const defaultSignInURL = "https://app.agendapro.com/sign_in"

// loginTimeout acota la sesión completa de navegador (navegación + login).
const loginTimeout = 90 * time.Second

// LoginAndGetToken abre un navegador headless, completa el login de AgendaPro
// y retorna el token bearer extraído de la cookie de sesión. El navegador se
// cierra siempre, incluso en error. Sin I/O a disco: el estado de la sesión
// se lee en memoria.
func LoginAndGetToken(ctx context.Context, email, password string) (string, error) {
	signInURL := os.Getenv("AGENDAPRO_SIGNIN_URL")
	if signInURL == "" {
		signInURL = defaultSignInURL
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if path := os.Getenv("CHROME_PATH"); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, loginTimeout)
	defer cancelTimeout()

	emailSel := strings.Join(EmailSelectors, ", ")
	passwordSel := strings.Join(PasswordSelectors, ", ")
	submitSel := strings.Join(SubmitSelectors, ", ")

	log.Printf("🌐 [AUTH] Abriendo navegador headless para login en %s", signInURL)

	var token string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(signInURL),
		chromedp.WaitVisible(emailSel, chromedp.ByQuery),
		chromedp.SendKeys(emailSel, email, chromedp.ByQuery),
		chromedp.WaitVisible(passwordSel, chromedp.ByQuery),
		chromedp.SendKeys(passwordSel, password, chromedp.ByQuery),
		chromedp.Click(submitSel, chromedp.ByQuery),
		// Esperar a que la navegación post-login se asiente antes de leer
		// cookies (la cookie la setea la app autenticada, no el formulario).
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.Sleep(3*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			cookies, err := storage.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			for _, c := range cookies {
				if c.Name == AuthCookieName {
					token = strings.TrimPrefix(c.Value, "Bearer ")
					return nil
				}
			}
			return nil
		}),
	)
	if err != nil {
		return "", &AuthError{Reason: "login navigation failed: " + err.Error()}
	}
	if token == "" {
		return "", &AuthError{Reason: "no authorization cookie found after login, check credentials"}
	}

	log.Printf("✅ [AUTH] Token de sesión obtenido (%d chars)", len(token))
	return token, nil
}

// AcquireToken hace el login completo y aplica la puerta de expiración: un
// token con menos de 5 minutos de validez se rechaza con AuthError antes de
// gastar ninguna llamada a la API.
func AcquireToken(ctx context.Context, email, password string) (string, error) {
	token, err := LoginAndGetToken(ctx, email, password)
	if err != nil {
		return "", err
	}

	remaining, known, err := CheckTokenExpiry(token)
	if err != nil {
		return "", err
	}
	if !known {
		log.Printf("⚠️  [AUTH] No se pudo decodificar la expiración del token (se continúa)")
		return token, nil
	}

	if remaining < time.Hour {
		log.Printf("⚠️  [AUTH] WARNING: el token expira en %d minutos", int(remaining.Minutes()))
	} else {
		log.Printf("🔑 [AUTH] Token válido por %dh %dm",
			int(remaining.Hours()), int(remaining.Minutes())%60)
	}
	return token, nil
}
