package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/yourorg/agendacl/internal/handlers"
	"github.com/yourorg/agendacl/internal/middleware"
	"github.com/yourorg/agendacl/internal/progress"
)

func Register(app *fiber.App, hub *progress.Hub) {
	// ============================================================================
	// API PÚBLICA (Endpoints para el frontend)
	// ============================================================================
	api := app.Group("/api")

	// Health check (sin rate limiting)
	api.Get("/health", handlers.Health)

	// ============================================================================
	// CATÁLOGO DE LOCALES (login de navegador, con rate limiting de login)
	// ============================================================================
	api.Post("/locations", middleware.LoginRateLimiter(), handlers.Locations)

	// ============================================================================
	// SCRAPING COMPLETO (operación costosa: navegador + cientos de requests)
	// ============================================================================
	bookings := api.Group("/bookings")
	bookings.Use(middleware.ScrapingRateLimiter())

	bookings.Post("/", handlers.Bookings)
	// POST /api/bookings?format=json|xlsx
	// Body: {email, password, months}
	// Retorna reservas Y bloqueos de todos los locales

	bookings.Post("/reserved", handlers.BookingsReserved)
	// POST /api/bookings/reserved?format=json|xlsx
	// Sólo eventos tipo reserva (RESERVED/CONFIRMED/ATTENDED/WAITLISTED)

	bookings.Post("/blocked", handlers.BookingsBlocked)
	// POST /api/bookings/blocked?format=json|xlsx
	// Sólo bloqueos y breaks

	// ============================================================================
	// PROGRESO EN VIVO (WebSocket)
	// ============================================================================
	app.Use("/ws/progress", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/progress", websocket.New(func(c *websocket.Conn) {
		hub.HandleWebSocket(c)
	}))
}
