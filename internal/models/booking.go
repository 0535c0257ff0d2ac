package models

// ============================================================================
// MODELOS DEL CALENDARIO AGENDAPRO
// ============================================================================
// Estructuras que espejan las respuestas JSON de la API interna de AgendaPro
// (api/views/admin/v2/calendar). No hay garantía de compatibilidad: es una API
// privada de terceros, los campos se mantienen alineados con lo observado.

// Location representa una sucursal/local del negocio.
type Location struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// LocationsResponse es la respuesta de GET locations.
type LocationsResponse struct {
	Locations     []Location `json:"locations"`
	Page          int        `json:"page"`
	TotalPages    int        `json:"total_pages"`
	TotalFiltered int        `json:"total_filtered"`
	PerPage       int        `json:"per_page"`
}

// Client representa al cliente de una reserva.
type Client struct {
	ID                   int    `json:"id"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	IdentificationNumber string `json:"identification_number"`
	IsNewClient          bool   `json:"is_new_client"`
}

// Service representa el servicio agendado (corte, masaje, etc.).
type Service struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	ListPrice float64 `json:"list_price"`
	Duration  int     `json:"duration"`
}

// Professional identifica al profesional asignado a una reserva.
type Professional struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Booking es el payload completo detrás de un evento tipo reserva.
type Booking struct {
	ID            int          `json:"id"`
	StatusID      int          `json:"status_id"`
	Client        *Client      `json:"client"`
	Professional  Professional `json:"professional"`
	Comment       string       `json:"comment"`
	PaymentStatus string       `json:"payment_status"`
	Amount        float64      `json:"amount"`
	Price         float64      `json:"price"`
	Tags          []string     `json:"tags"`
	Service       *Service     `json:"service"`
}

// CalendarEvent es un evento del calendario de un profesional.
// Type puede ser RESERVED, CONFIRMED, ATTENDED, WAITLISTED (reservas) o
// BLOCKED, BREAK, etc. (bloqueos). Booking sólo viene en eventos de reserva.
type CalendarEvent struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Booking     *Booking `json:"booking,omitempty"`
}

// CalendarUser agrupa los eventos de un profesional.
type CalendarUser struct {
	ID        int             `json:"id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Events    []CalendarEvent `json:"events"`
}

// BookingsResponse es la respuesta (paginada) de GET bookings.
type BookingsResponse struct {
	CalendarUsersEvents []CalendarUser `json:"calendar_users_events"`
	Page                int            `json:"page"`
	TotalPages          int            `json:"total_pages"`
	TotalFiltered       int            `json:"total_filtered"`
	PerPage             int            `json:"per_page"`
}

// ============================================================================
// PARÁMETROS Y RESULTADO DEL SCRAPER
// ============================================================================

// Credentials son las credenciales de la cuenta AgendaPro. Nunca se persisten:
// viven sólo durante el login del navegador.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// BookingParams son los parámetros de una corrida completa de scraping.
type BookingParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Months   int    `json:"months"`
}

// Row es una fila plana de salida: nombre de columna -> valor escalar.
// Los valores ausentes se representan como string vacío, nunca nil.
type Row map[string]any

// ScrapedBookings es el artefacto final de la pipeline: el catálogo de
// locales más una lista de filas por local, separadas en reservas y bloqueos.
// Invariante: Reserved y Blocked tienen una entrada por cada local (posiblemente
// vacía) y las filas de cada entrada vienen ordenadas ascendente por "Inicio".
type ScrapedBookings struct {
	Locations []Location    `json:"locations"`
	Reserved  map[int][]Row `json:"reserved"`
	Blocked   map[int][]Row `json:"blocked"`
}

// ReservedHeaders define el orden de columnas de la planilla de reservas.
var ReservedHeaders = []string{
	"Booking ID",
	"Profesional",
	"Servicio",
	"Inicio",
	"Fin",
	"Duracion (min)",
	"Cliente",
	"Email",
	"Telefono",
	"Precio",
	"Monto",
	"Estado Pago",
	"Cliente Nuevo",
	"Tags",
	"Comentario",
	"Estado",
}

// BlockedHeaders define el orden de columnas de la planilla de bloqueos/breaks.
var BlockedHeaders = []string{
	"Event ID",
	"Profesional",
	"Tipo",
	"Titulo",
	"Descripcion",
	"Inicio",
	"Fin",
}
