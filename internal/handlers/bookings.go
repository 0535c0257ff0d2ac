package handlers

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/agendacl/internal/excel"
	"github.com/yourorg/agendacl/internal/models"
	"github.com/yourorg/agendacl/internal/validation"
)

// ============================================================================
// ENDPOINTS DE SCRAPING
// ============================================================================
// Cada handler recibe credenciales en el body (nunca en query: terminan en
// logs de acceso), corre la pipeline con timeout y responde JSON plano o
// escribe planillas XLSX según ?format=.

const (
	reservedFileName = "bookings-reserved.xlsx"
	blockedFileName  = "bookings-blocked.xlsx"
)

// Locations handles POST /api/locations.
// Retorna el catálogo de locales de la cuenta. Cachea por email: poblar un
// dropdown no debería costar un login de navegador cada vez.
func Locations(c *fiber.Ctx) error {
	s := getScraper()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	var creds models.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	if err := validation.ValidateCredentials(creds.Email, creds.Password); err != nil {
		return c.Status(statusForError(err)).JSON(models.ErrorResponse{Error: err.Error()})
	}

	if lc := getLocationsCache(); lc != nil {
		if locations, ok := lc.Get(creds.Email); ok {
			log.Printf("📍 [API] Catálogo de locales servido desde caché (%s)", creds.Email)
			return c.JSON(fiber.Map{"locations": locations})
		}
	}

	ctx, cancel := context.WithTimeout(c.Context(), getScrapeTimeout())
	defer cancel()

	_, locations, err := s.ScrapeLocations(ctx, creds.Email, creds.Password)
	if err != nil {
		log.Printf("❌ [API] Error obteniendo locales: %v", err)
		return c.Status(statusForError(err)).JSON(models.ErrorResponse{Error: err.Error()})
	}

	if lc := getLocationsCache(); lc != nil {
		lc.Set(creds.Email, locations)
	}

	return c.JSON(fiber.Map{"locations": locations})
}

// Bookings handles POST /api/bookings.
// Corre la pipeline completa y retorna reservas y bloqueos. Con ?format=xlsx
// escribe ambas planillas a disco y retorna las rutas.
func Bookings(c *fiber.Ctx) error {
	data, err := runScrape(c)
	if err != nil {
		return respondError(c, err)
	}

	if c.Query("format") == "xlsx" {
		reservedPath := outputPath(reservedFileName)
		if err := excel.WriteReservedFile(reservedPath, data); err != nil {
			return respondError(c, err)
		}
		blockedPath := outputPath(blockedFileName)
		if err := excel.WriteBlockedFile(blockedPath, data); err != nil {
			return respondError(c, err)
		}
		return c.JSON(models.FilesResponse{
			Files:    []string{reservedPath, blockedPath},
			Reserved: countRows(data.Reserved),
			Blocked:  countRows(data.Blocked),
		})
	}

	return c.JSON(fiber.Map{
		"reserved": flattenRows(data.Locations, data.Reserved),
		"blocked":  flattenRows(data.Locations, data.Blocked),
	})
}

// BookingsReserved handles POST /api/bookings/reserved.
func BookingsReserved(c *fiber.Ctx) error {
	data, err := runScrape(c)
	if err != nil {
		return respondError(c, err)
	}

	if c.Query("format") == "xlsx" {
		path := outputPath(reservedFileName)
		if err := excel.WriteReservedFile(path, data); err != nil {
			return respondError(c, err)
		}
		return c.JSON(models.FilesResponse{
			Files:    []string{path},
			Reserved: countRows(data.Reserved),
		})
	}

	return c.JSON(fiber.Map{"reserved": flattenRows(data.Locations, data.Reserved)})
}

// BookingsBlocked handles POST /api/bookings/blocked.
func BookingsBlocked(c *fiber.Ctx) error {
	data, err := runScrape(c)
	if err != nil {
		return respondError(c, err)
	}

	if c.Query("format") == "xlsx" {
		path := outputPath(blockedFileName)
		if err := excel.WriteBlockedFile(path, data); err != nil {
			return respondError(c, err)
		}
		return c.JSON(models.FilesResponse{
			Files:   []string{path},
			Blocked: countRows(data.Blocked),
		})
	}

	return c.JSON(fiber.Map{"blocked": flattenRows(data.Locations, data.Blocked)})
}

// runScrape parsea y valida el body, y corre la pipeline completa con timeout.
func runScrape(c *fiber.Ctx) (*models.ScrapedBookings, error) {
	s := getScraper()
	if s == nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "server not ready")
	}

	var params models.BookingParams
	if err := c.BodyParser(&params); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if err := validation.ValidateBookingParams(params); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(c.Context(), getScrapeTimeout())
	defer cancel()

	data, err := s.ScrapeBookings(ctx, params)
	if err != nil {
		log.Printf("❌ [API] Corrida de scraping falló: %v", err)
		return nil, err
	}
	return data, nil
}

func respondError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
	}
	return c.Status(statusForError(err)).JSON(models.ErrorResponse{Error: err.Error()})
}

// flattenRows concatena las filas de todos los locales en orden de catálogo,
// anotando cada fila con el local de origen (la fila plana por sí sola no
// dice de qué local vino).
func flattenRows(locations []models.Location, rows map[int][]models.Row) []models.Row {
	flat := []models.Row{}
	for _, loc := range locations {
		for _, row := range rows[loc.Value] {
			out := make(models.Row, len(row)+2)
			for k, v := range row {
				out[k] = v
			}
			out["locationId"] = loc.Value
			out["location"] = loc.Label
			flat = append(flat, out)
		}
	}
	return flat
}

func countRows(rows map[int][]models.Row) int {
	total := 0
	for _, r := range rows {
		total += len(r)
	}
	return total
}

// outputPath resuelve dónde escribir las planillas (XLSX_OUTPUT_DIR o el
// directorio de trabajo).
func outputPath(name string) string {
	dir := os.Getenv("XLSX_OUTPUT_DIR")
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
