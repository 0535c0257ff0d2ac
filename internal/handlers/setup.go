package handlers

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/agendacl/internal/agendapro"
	"github.com/yourorg/agendacl/internal/cache"
	"github.com/yourorg/agendacl/internal/models"
	"github.com/yourorg/agendacl/internal/validation"
)

// BookingScraper es la pipeline de scraping vista desde los handlers. Es una
// interfaz para poder testear los handlers con un scraper falso: el real abre
// un Chrome headless.
type BookingScraper interface {
	ScrapeLocations(ctx context.Context, email, password string) (string, []models.Location, error)
	ScrapeBookings(ctx context.Context, params models.BookingParams) (*models.ScrapedBookings, error)
}

// package-level dependencies
var (
	setupOnce      sync.Once    // Garantiza inicialización única
	setupMu        sync.RWMutex // Protege acceso a variables globales
	scraper        BookingScraper
	locationsCache *cache.Cache
	scrapeTimeout  = 5 * time.Minute
)

// Setup wires shared dependencies for handlers. Call this during app bootstrap.
func Setup(s BookingScraper, c *cache.Cache) {
	setupOnce.Do(func() {
		setupMu.Lock()
		defer setupMu.Unlock()

		scraper = s
		locationsCache = c

		if raw := os.Getenv("SCRAPE_TIMEOUT_MINUTES"); raw != "" {
			if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
				scrapeTimeout = time.Duration(minutes) * time.Minute
			}
		}
	})
}

// getScraper retorna la pipeline de scraping de forma segura
func getScraper() BookingScraper {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return scraper
}

// getLocationsCache retorna el caché de locales de forma segura
func getLocationsCache() *cache.Cache {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return locationsCache
}

func getScrapeTimeout() time.Duration {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return scrapeTimeout
}

// statusForError traduce errores de la pipeline a códigos HTTP:
// parámetros inválidos -> 422, credenciales/token -> 401, AgendaPro caído o
// rechazando -> 502, timeout de corrida -> 408, resto -> 500.
func statusForError(err error) int {
	var paramErr *validation.ParamError
	if errors.As(err, &paramErr) {
		return fiber.StatusUnprocessableEntity
	}

	var authErr *agendapro.AuthError
	if errors.As(err, &authErr) {
		return fiber.StatusUnauthorized
	}

	var remoteErr *agendapro.RemoteError
	if errors.As(err, &remoteErr) {
		return fiber.StatusBadGateway
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fiber.StatusRequestTimeout
	}

	return fiber.StatusInternalServerError
}
