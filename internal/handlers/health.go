package handlers

import (
	"os"
	"os/exec"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthResponse representa el estado de salud del sistema
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version,omitempty"`
}

// chromeCandidates son los binarios que chromedp sabe lanzar, en orden de
// preferencia, cuando CHROME_PATH no está seteado.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
}

// Health proporciona un health check del sistema
func Health(c *fiber.Ctx) error {
	services := make(map[string]string)
	overall := "healthy"

	// ============================================================================
	// CHECK: Navegador (requisito duro: sin Chrome no hay login)
	// ============================================================================
	if path := findChrome(); path != "" {
		services["chrome"] = "healthy"
	} else {
		services["chrome"] = "not_found"
		overall = "degraded"
	}

	// ============================================================================
	// CHECK: Pipeline de scraping inicializada
	// ============================================================================
	if getScraper() != nil {
		services["scraper"] = "healthy"
	} else {
		services["scraper"] = "not_initialized"
		overall = "degraded"
	}

	statusCode := fiber.StatusOK
	if overall == "degraded" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Services:  services,
		Version:   os.Getenv("APP_VERSION"),
	})
}

func findChrome() string {
	if path := os.Getenv("CHROME_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}
	for _, name := range chromeCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
