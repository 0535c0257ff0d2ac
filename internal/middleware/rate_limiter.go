package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// ============================================================================
// RATE LIMITING MIDDLEWARE
// ============================================================================
// Protege el backend contra abuso. Cada request de scraping abre un Chrome
// headless y dispara cientos de llamadas contra AgendaPro: los límites acá
// no son cosméticos, protegen la cuenta del cliente de un baneo por ráfagas.

// GlobalRateLimiter - Limitador general para todos los endpoints
// 300 requests por minuto por IP
func GlobalRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Rate limit exceeded",
				"retry_after": 60,
				"message":     "Too many requests. Please try again in 1 minute.",
			})
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
		LimiterMiddleware:      limiter.SlidingWindow{},
	})
}

// ScrapingRateLimiter - Para los endpoints que abren navegador y recorren el
// calendario completo. 3 requests cada 5 minutos por IP: una corrida normal
// tarda varios minutos, más de eso es un cliente con retry-loop roto.
func ScrapingRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        3,
		Expiration: 5 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Scraping rate limit exceeded",
				"retry_after": 300,
				"message":     "Scraping is rate-limited to 3 requests per 5 minutes.",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

// LoginRateLimiter - Para endpoints que validan credenciales contra AgendaPro
// 10 requests por minuto por IP + endpoint (protege contra fuerza bruta con
// credenciales ajenas a través de este servicio)
func LoginRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + ":" + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Authentication rate limit exceeded",
				"retry_after": 60,
				"message":     "Too many login attempts. Please try again in 1 minute.",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
