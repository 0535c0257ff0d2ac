package cache

import (
	"sync"
	"time"

	"github.com/yourorg/agendacl/internal/models"
)

// ============================================================================
// CACHE DE CATÁLOGO DE LOCALES
// ============================================================================
// Obtener el catálogo de locales implica un login de navegador completo
// (30-60s). El catálogo casi nunca cambia, así que se cachea por cuenta con
// TTL corto: un frontend que puebla un dropdown no debería pagar un Chrome
// headless por cada render.
//
// Uso:
//   c := cache.NewLocationsCache(10*time.Minute, 15*time.Minute)
//   if locs, ok := c.Get(email); ok { return locs }

type entry struct {
	locations  []models.Location
	expiration int64 // Unix nanos, 0 = sin expiración
}

// Cache es un almacén thread-safe de catálogos por cuenta con TTL.
type Cache struct {
	items           map[string]entry
	mu              sync.RWMutex
	ttl             time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan bool
}

// NewLocationsCache crea el caché y arranca la limpieza periódica de entradas
// expiradas. Llamar Stop al apagar el servidor.
func NewLocationsCache(ttl, cleanupInterval time.Duration) *Cache {
	c := &Cache{
		items:           make(map[string]entry),
		ttl:             ttl,
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan bool),
	}
	go c.startCleanupTimer()
	return c
}

// Set guarda el catálogo de una cuenta con el TTL por defecto.
func (c *Cache) Set(email string, locations []models.Location) {
	var expiration int64
	if c.ttl > 0 {
		expiration = time.Now().Add(c.ttl).UnixNano()
	}

	c.mu.Lock()
	c.items[email] = entry{locations: locations, expiration: expiration}
	c.mu.Unlock()
}

// Get recupera el catálogo de una cuenta.
// Retorna (catálogo, true) si existe y no ha expirado.
func (c *Cache) Get(email string) ([]models.Location, bool) {
	c.mu.RLock()
	item, found := c.items[email]
	c.mu.RUnlock()

	if !found {
		return nil, false
	}
	if item.expiration > 0 && time.Now().UnixNano() > item.expiration {
		c.Delete(email)
		return nil, false
	}
	return item.locations, true
}

// Delete invalida el catálogo de una cuenta.
func (c *Cache) Delete(email string) {
	c.mu.Lock()
	delete(c.items, email)
	c.mu.Unlock()
}

// Clear limpia completamente el caché.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]entry)
	c.mu.Unlock()
}

// Count retorna el número de cuentas cacheadas (incluye expiradas).
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// startCleanupTimer ejecuta limpieza periódica de entradas expiradas.
func (c *Cache) startCleanupTimer() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for key, item := range c.items {
		if item.expiration > 0 && now > item.expiration {
			delete(c.items, key)
		}
	}
}

// Stop detiene la limpieza automática.
func (c *Cache) Stop() {
	c.stopCleanup <- true
}
