package agendapro

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/yourorg/agendacl/internal/models"
)

// ============================================================================
// CLIENTE DE LA API INTERNA DE AGENDAPRO
// ============================================================================
// Consultas puras contra los endpoints de calendario, autenticadas con el
// token bearer extraído del login. Maneja reintentos con backoff exponencial
// para 429/5xx y fusiona respuestas paginadas en una sola respuesta lógica.

const (
	defaultBaseURL = "https://agendapro.com/api/views/admin/v2/calendar"
	defaultAppURL  = "https://app.agendapro.com"

	// Política de reintentos: backoff 2s, 4s, 8s (3 reintentos, 4 intentos).
	defaultMaxRetries = 3
	defaultRetryBase  = 2 * time.Second

	// Pausa fija entre requests consecutivos (páginas y días) para respetar
	// el rate limiting del servicio. No es opcional: el servicio atribuye
	// carga por token y castiga ráfagas con 429.
	requestPace = 300 * time.Millisecond
)

// Client consulta la API de calendario de AgendaPro. El token se pasa
// explícitamente en cada llamada, nunca como estado ambiente: mantiene al
// cliente puro y testeable con un transporte falso.
type Client struct {
	baseURL    string
	appURL     string
	httpClient *http.Client

	maxRetries int
	retryBase  time.Duration
	sleep      func(time.Duration)

	// pace regula la pausa entre requests consecutivos; compartido con el
	// scraper para que páginas y días respeten la misma cadencia.
	pace *rate.Limiter
}

// NewClient crea un cliente con la política de reintentos y cadencia por
// defecto. AGENDAPRO_BASE_URL y AGENDAPRO_APP_URL permiten apuntar a otro
// host (tests de integración, proxy).
func NewClient() *Client {
	baseURL := os.Getenv("AGENDAPRO_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	appURL := os.Getenv("AGENDAPRO_APP_URL")
	if appURL == "" {
		appURL = defaultAppURL
	}

	return &Client{
		baseURL: baseURL,
		appURL:  appURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: defaultMaxRetries,
		retryBase:  defaultRetryBase,
		sleep:      time.Sleep,
		pace:       rate.NewLimiter(rate.Every(requestPace), 1),
	}
}

// setAPIHeaders fija los headers que la validación CORS/sesión del vendor
// exige: origin y referer deben apuntar al host de la app autenticada. No son
// cosméticos, sin ellos la API responde 401.
func (c *Client) setAPIHeaders(req *http.Request, token string) {
	req.Header.Set("accept", "application/json")
	req.Header.Set("authorization", token)
	req.Header.Set("origin", c.appURL)
	req.Header.Set("referer", c.appURL+"/")
	req.Header.Set("access-control-allow-origin", "*")
	req.Header.Set("access-control-expose-headers", "Authorization")
	req.Header.Set("from", base64.StdEncoding.EncodeToString([]byte(c.appURL+"/bookings")))
}

// apiGet hace un GET autenticado con reintentos. 429 y 5xx se reintentan con
// backoff exponencial (2s, 4s, 8s); cualquier otro status no-2xx falla de
// inmediato con RemoteError.
func (c *Client) apiGet(ctx context.Context, token, path string, out any) error {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		c.setAPIHeaders(req, token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			return nil
		}
		resp.Body.Close()

		if (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500) && attempt < c.maxRetries {
			wait := c.retryBase << attempt
			log.Printf("    HTTP %d, reintentando en %s (intento %d/%d)...",
				resp.StatusCode, wait, attempt+1, c.maxRetries)
			c.sleep(wait)
			continue
		}

		return &RemoteError{Status: resp.StatusCode}
	}
}

// ListLocations retorna el catálogo de locales de la cuenta autenticada.
func (c *Client) ListLocations(ctx context.Context, token string) ([]models.Location, error) {
	var data models.LocationsResponse
	if err := c.apiGet(ctx, token, "locations?per_page=8&search_key=&page=1", &data); err != nil {
		return nil, err
	}
	return data.Locations, nil
}

// FetchDayBookings trae TODOS los eventos de un local para un día: pide la
// página 1, lee total_pages y concatena las páginas restantes en orden,
// pausando entre páginas según la cadencia del cliente.
func (c *Client) FetchDayBookings(ctx context.Context, token string, locationID int, day string) (*models.BookingsResponse, error) {
	basePath := fmt.Sprintf("bookings?start=%s&end=%s&location_id=%d&time_resource=false&per_page=100",
		day, day, locationID)

	var data models.BookingsResponse
	if err := c.apiGet(ctx, token, basePath+"&page=1", &data); err != nil {
		return nil, err
	}

	totalPages := data.TotalPages
	for page := 2; page <= totalPages; page++ {
		if err := c.pace.Wait(ctx); err != nil {
			return nil, err
		}
		var pageData models.BookingsResponse
		if err := c.apiGet(ctx, token, fmt.Sprintf("%s&page=%d", basePath, page), &pageData); err != nil {
			return nil, err
		}
		data.CalendarUsersEvents = append(data.CalendarUsersEvents, pageData.CalendarUsersEvents...)
	}

	return &data, nil
}
