package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/agendacl/internal/agendapro"
	"github.com/yourorg/agendacl/internal/cache"
	"github.com/yourorg/agendacl/internal/models"
	"github.com/yourorg/agendacl/internal/validation"
)

// stubScraper reemplaza la pipeline real: los handlers no deben necesitar un
// navegador para testearse. Cada test ajusta los campos que le interesan.
type stubScraper struct {
	locations     []models.Location
	locationsErr  error
	locationCalls int

	bookings    *models.ScrapedBookings
	bookingsErr error
}

func (s *stubScraper) ScrapeLocations(ctx context.Context, email, password string) (string, []models.Location, error) {
	s.locationCalls++
	if s.locationsErr != nil {
		return "", nil, s.locationsErr
	}
	return "tok", s.locations, nil
}

func (s *stubScraper) ScrapeBookings(ctx context.Context, params models.BookingParams) (*models.ScrapedBookings, error) {
	if s.bookingsErr != nil {
		return nil, s.bookingsErr
	}
	return s.bookings, nil
}

var (
	testStub  = &stubScraper{}
	testCache = cache.NewLocationsCache(5*time.Minute, 10*time.Minute)
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	Setup(testStub, testCache)

	// Reset del stub entre tests (Setup sólo corre una vez)
	*testStub = stubScraper{}
	testCache.Clear()

	app := fiber.New()
	app.Get("/api/health", Health)
	app.Post("/api/locations", Locations)
	app.Post("/api/bookings", Bookings)
	app.Post("/api/bookings/reserved", BookingsReserved)
	app.Post("/api/bookings/blocked", BookingsBlocked)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func sampleBookings() *models.ScrapedBookings {
	return &models.ScrapedBookings{
		Locations: []models.Location{{Label: "Centro", Value: 1}},
		Reserved: map[int][]models.Row{
			1: {{"Booking ID": 100, "Profesional": "María Soto", "Inicio": "2025-06-10 09:00"}},
		},
		Blocked: map[int][]models.Row{
			1: {{"Event ID": "blk-1", "Tipo": "BREAK", "Inicio": "2025-06-10 13:00"}},
		},
	}
}

func TestLocationsEndpoint(t *testing.T) {
	app := newTestApp(t)
	testStub.locations = []models.Location{{Label: "Centro", Value: 1}}

	resp := postJSON(t, app, "/api/locations", models.Credentials{
		Email: "ok@salon.cl", Password: "secreto",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Locations []models.Location `json:"locations"`
	}
	decodeJSON(t, resp, &body)
	if len(body.Locations) != 1 || body.Locations[0].Label != "Centro" {
		t.Errorf("Unexpected locations: %+v", body.Locations)
	}
}

func TestLocationsServedFromCache(t *testing.T) {
	app := newTestApp(t)
	testStub.locations = []models.Location{{Label: "Centro", Value: 1}}

	creds := models.Credentials{Email: "cacheado@salon.cl", Password: "secreto"}

	resp := postJSON(t, app, "/api/locations", creds)
	resp.Body.Close()
	resp = postJSON(t, app, "/api/locations", creds)
	resp.Body.Close()

	if testStub.locationCalls != 1 {
		t.Errorf("Expected 1 scrape (second served from cache), got %d", testStub.locationCalls)
	}
}

func TestLocationsInvalidCredentials(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/api/locations", models.Credentials{Email: "", Password: ""})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLocationsAuthFailure(t *testing.T) {
	app := newTestApp(t)
	testStub.locationsErr = &agendapro.AuthError{Reason: "no authorization cookie found after login, check credentials"}

	resp := postJSON(t, app, "/api/locations", models.Credentials{
		Email: "mala@salon.cl", Password: "incorrecta",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestBookingsJSON(t *testing.T) {
	app := newTestApp(t)
	testStub.bookings = sampleBookings()

	resp := postJSON(t, app, "/api/bookings", models.BookingParams{
		Email: "ok@salon.cl", Password: "secreto", Months: 1,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Reserved []models.Row `json:"reserved"`
		Blocked  []models.Row `json:"blocked"`
	}
	decodeJSON(t, resp, &body)

	if len(body.Reserved) != 1 || len(body.Blocked) != 1 {
		t.Fatalf("Unexpected row counts: %d reserved, %d blocked", len(body.Reserved), len(body.Blocked))
	}
	// Las filas aplanadas quedan anotadas con su local
	if body.Reserved[0]["location"] != "Centro" {
		t.Errorf("Expected location annotation, got %v", body.Reserved[0]["location"])
	}
	if body.Reserved[0]["locationId"] != float64(1) {
		t.Errorf("Expected locationId annotation, got %v", body.Reserved[0]["locationId"])
	}
}

func TestBookingsXLSX(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XLSX_OUTPUT_DIR", dir)

	app := newTestApp(t)
	testStub.bookings = sampleBookings()

	resp := postJSON(t, app, "/api/bookings?format=xlsx", models.BookingParams{
		Email: "ok@salon.cl", Password: "secreto", Months: 1,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var body models.FilesResponse
	decodeJSON(t, resp, &body)

	if len(body.Files) != 2 {
		t.Fatalf("Expected 2 files, got %v", body.Files)
	}
	if body.Reserved != 1 || body.Blocked != 1 {
		t.Errorf("Unexpected counts: %d reserved, %d blocked", body.Reserved, body.Blocked)
	}
	for _, name := range []string{"bookings-reserved.xlsx", "bookings-blocked.xlsx"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
}

func TestBookingsReservedOnly(t *testing.T) {
	app := newTestApp(t)
	testStub.bookings = sampleBookings()

	resp := postJSON(t, app, "/api/bookings/reserved", models.BookingParams{
		Email: "ok@salon.cl", Password: "secreto", Months: 1,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var body map[string]json.RawMessage
	decodeJSON(t, resp, &body)
	if _, ok := body["reserved"]; !ok {
		t.Error("Expected reserved key")
	}
	if _, ok := body["blocked"]; ok {
		t.Error("Did not expect blocked key on /reserved")
	}
}

func TestBookingsInvalidMonths(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/api/bookings", models.BookingParams{
		Email: "ok@salon.cl", Password: "secreto", Months: 0,
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestBookingsRemoteFailure(t *testing.T) {
	app := newTestApp(t)
	testStub.bookingsErr = &agendapro.RemoteError{Status: http.StatusServiceUnavailable}

	resp := postJSON(t, app, "/api/bookings", models.BookingParams{
		Email: "ok@salon.cl", Password: "secreto", Months: 1,
	})
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"param", &validation.ParamError{Field: "months", Message: "debe ser al menos 1"}, fiber.StatusUnprocessableEntity},
		{"auth", &agendapro.AuthError{Reason: "token expires in 10s (< 5 min)"}, fiber.StatusUnauthorized},
		{"remote", &agendapro.RemoteError{Status: 503}, fiber.StatusBadGateway},
		{"timeout", context.DeadlineExceeded, fiber.StatusRequestTimeout},
		{"other", os.ErrPermission, fiber.StatusInternalServerError},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := statusForError(c.err); got != c.want {
				t.Errorf("Expected %d, got %d", c.want, got)
			}
		})
	}
}
