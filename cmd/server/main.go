package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/yourorg/agendacl/internal/agendapro"
	"github.com/yourorg/agendacl/internal/cache"
	"github.com/yourorg/agendacl/internal/handlers"
	"github.com/yourorg/agendacl/internal/middleware"
	"github.com/yourorg/agendacl/internal/progress"
	"github.com/yourorg/agendacl/internal/routes"
)

func main() {
	_ = godotenv.Load()

	app := fiber.New(fiber.Config{
		// Las corridas de scraping tardan minutos: el timeout real lo pone
		// cada handler, acá sólo se evita cortar antes de tiempo.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
	})
	app.Use(logger.New())
	app.Use(middleware.GlobalRateLimiter())

	// ============================================================================
	// PIPELINE DE SCRAPING + PROGRESO EN VIVO
	// ============================================================================
	hub := progress.NewHub()

	scraper := agendapro.NewScraper()
	scraper.SetProgress(func(ev agendapro.ProgressEvent) {
		agendapro.LogProgress(ev)
		hub.SendProgress(ev)
	})
	scraper.SetRunDone(func(runID string, err error) {
		if err != nil {
			hub.SendRunError(runID, err.Error())
			return
		}
		hub.SendRunDone(runID)
	})

	// Caché de catálogos: 10min TTL, limpieza cada 15min
	locationsCache := cache.NewLocationsCache(10*time.Minute, 15*time.Minute)

	handlers.Setup(scraper, locationsCache)
	routes.Register(app, hub)

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\n🛑 Señal de terminación recibida, cerrando servidor...")

		locationsCache.Stop()
		hub.Stop()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Error cerrando servidor: %v", err)
		}

		log.Println("✅ Servidor cerrado correctamente")
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Servidor escuchando en :%s", port)
	log.Println("📍 Endpoints disponibles:")
	log.Println("   GET  /api/health            - Estado del sistema")
	log.Println("   POST /api/locations         - Catálogo de locales (body: email, password)")
	log.Println("   POST /api/bookings          - Reservas + bloqueos (body: email, password, months)")
	log.Println("   POST /api/bookings/reserved - Sólo reservas (?format=json|xlsx)")
	log.Println("   POST /api/bookings/blocked  - Sólo bloqueos (?format=json|xlsx)")
	log.Println("   WS   /ws/progress           - Avance de corridas en vivo")
	log.Println("")
	log.Println("💡 Presiona Ctrl+C para detener")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
