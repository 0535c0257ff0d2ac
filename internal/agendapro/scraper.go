package agendapro

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/agendacl/internal/models"
)

// ============================================================================
// PIPELINE DE SCRAPING
// ============================================================================
// Orquesta la corrida completa: login -> catálogo de locales -> un request
// por (local, día) -> clasificación y deduplicación -> resultado final.
// Estrictamente secuencial a propósito: un local a la vez, un día a la vez,
// una página a la vez. El servicio remoto limita por token y requests en
// paralelo sólo gatillan 429 que terminan sumando latencia.

// reservedTypes es el vocabulario de eventos tipo reserva. Todo lo demás
// (BLOCKED, BREAK, etc.) se clasifica como bloqueo.
var reservedTypes = map[string]bool{
	"RESERVED":   true,
	"CONFIRMED":  true,
	"ATTENDED":   true,
	"WAITLISTED": true,
}

// ProgressEvent es el avance tipado de una corrida: pensado para barras de
// progreso (done/total) sin parsear texto de consola.
type ProgressEvent struct {
	RunID    string `json:"run_id"`
	Done     int    `json:"done"`
	Total    int    `json:"total"`
	Location string `json:"location"`
	Day      string `json:"day"`
}

// ProgressFunc recibe cada evento de avance. Se invoca desde la goroutine de
// la corrida, una vez por par (local, día).
type ProgressFunc func(ProgressEvent)

// RunFunc recibe el cierre de una corrida: err nil si terminó completa, el
// error que la abortó si no. Se invoca exactamente una vez por corrida, con
// el mismo run id que llevan sus eventos de avance.
type RunFunc func(runID string, err error)

// FormatProgress produce la línea de consola histórica `[n/total] local: día`.
// El bridge de UI antiguo parsea exactamente este formato: no cambiar sin
// migrar ese consumidor.
func FormatProgress(ev ProgressEvent) string {
	return fmt.Sprintf("  [%d/%d] %s: %s", ev.Done, ev.Total, ev.Location, ev.Day)
}

// LogProgress es el callback por defecto: loguea la línea histórica.
func LogProgress(ev ProgressEvent) {
	log.Println(FormatProgress(ev))
}

// Scraper es la pipeline completa de extracción de agendas.
type Scraper struct {
	client   *Client
	progress ProgressFunc
	finished RunFunc
}

// NewScraper crea la pipeline con el cliente HTTP por defecto.
func NewScraper() *Scraper {
	return &Scraper{
		client:   NewClient(),
		progress: LogProgress,
	}
}

// SetProgress reemplaza el callback de avance (nil lo silencia).
func (s *Scraper) SetProgress(fn ProgressFunc) {
	s.progress = fn
}

// SetRunDone registra el callback de cierre de corrida (nil lo silencia).
func (s *Scraper) SetRunDone(fn RunFunc) {
	s.finished = fn
}

// ScrapeLocations autentica y retorna el catálogo de locales junto con el
// token de sesión. Es el paso compartido de toda corrida: abre (y cierra) un
// navegador completo, así que debe llamarse a lo más una vez por corrida.
func (s *Scraper) ScrapeLocations(ctx context.Context, email, password string) (string, []models.Location, error) {
	token, err := AcquireToken(ctx, email, password)
	if err != nil {
		return "", nil, err
	}

	log.Printf("📍 [SCRAPER] Consultando locales...")
	locations, err := s.client.ListLocations(ctx, token)
	if err != nil {
		return "", nil, err
	}
	log.Printf("📍 [SCRAPER] %d locales encontrados", len(locations))

	return token, locations, nil
}

// ScrapeBookings ejecuta la pipeline completa: login, catálogo de locales,
// expansión del rango en días y agregación por local. Todo-o-nada: cualquier
// AuthError/RemoteError aborta la corrida sin resultado parcial.
func (s *Scraper) ScrapeBookings(ctx context.Context, params models.BookingParams) (*models.ScrapedBookings, error) {
	token, locations, err := s.ScrapeLocations(ctx, params.Email, params.Password)
	if err != nil {
		return nil, err
	}

	days := ExpandRange(time.Now(), params.Months)
	log.Printf("🗓️  [SCRAPER] Rango %s a %s (%d días x %d locales = %d requests)",
		days[0], days[len(days)-1], len(days), len(locations), len(days)*len(locations))

	reserved, blocked, err := s.run(ctx, token, locations, days)
	if err != nil {
		return nil, err
	}

	return assemble(locations, reserved, blocked), nil
}

// run ejecuta el motor de agregación bajo un run id nuevo y anuncia el cierre
// de la corrida (exitoso o abortado) por el callback registrado.
func (s *Scraper) run(ctx context.Context, token string, locations []models.Location, days []string) (map[int][]models.Row, map[int][]models.Row, error) {
	runID := uuid.NewString()

	reserved, blocked, err := s.collect(ctx, runID, token, locations, days)
	if s.finished != nil {
		s.finished(runID, err)
	}
	return reserved, blocked, err
}

// collect es el motor de clasificación y agregación: por cada local, en orden
// de catálogo, recorre los días ascendentes, clasifica cada evento, deduplica
// por identificador estable DENTRO del local y acumula filas planas.
//
// La deduplicación es por local, no global: una misma reserva apareciendo en
// dos locales distintos (personal multi-local) se conserva en ambos. Es el
// comportamiento histórico; no "arreglar" sin confirmación de producto.
func (s *Scraper) collect(ctx context.Context, runID, token string, locations []models.Location, days []string) (map[int][]models.Row, map[int][]models.Row, error) {
	allReserved := make(map[int][]models.Row, len(locations))
	allBlocked := make(map[int][]models.Row, len(locations))

	total := len(locations) * len(days)
	done := 0

	for _, loc := range locations {
		reservedRows := []models.Row{}
		blockedRows := []models.Row{}
		seenReserved := map[string]bool{}
		seenBlocked := map[string]bool{}

		for _, day := range days {
			// Punto de cancelación: entre días, antes de gastar un request.
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}

			done++
			if s.progress != nil {
				s.progress(ProgressEvent{
					RunID:    runID,
					Done:     done,
					Total:    total,
					Location: loc.Label,
					Day:      day,
				})
			}

			data, err := s.client.FetchDayBookings(ctx, token, loc.Value, day)
			if err != nil {
				return nil, nil, err
			}

			for _, user := range data.CalendarUsersEvents {
				profName := user.FirstName + " " + user.LastName
				for _, ev := range user.Events {
					if reservedTypes[ev.Type] {
						id := eventKey(ev)
						if seenReserved[id] {
							continue
						}
						seenReserved[id] = true
						reservedRows = append(reservedRows, projectReserved(profName, ev))
					} else {
						if seenBlocked[ev.ID] {
							continue
						}
						seenBlocked[ev.ID] = true
						blockedRows = append(blockedRows, projectBlocked(profName, ev))
					}
				}
			}

			// Cortesía de rate limit: una pausa por par (local, día), sin
			// importar cuántos eventos trajo.
			if err := s.client.pace.Wait(ctx); err != nil {
				return nil, nil, err
			}
		}

		sortByInicio(reservedRows)
		sortByInicio(blockedRows)

		allReserved[loc.Value] = reservedRows
		allBlocked[loc.Value] = blockedRows

		log.Printf("    => %s: %d reservas | %d bloqueos/breaks",
			loc.Label, len(reservedRows), len(blockedRows))
	}

	return allReserved, allBlocked, nil
}

// eventKey retorna el identificador estable de deduplicación: el id de la
// reserva si existe, si no el id del evento.
func eventKey(ev models.CalendarEvent) string {
	if ev.Booking != nil {
		return fmt.Sprintf("b:%d", ev.Booking.ID)
	}
	return "e:" + ev.ID
}

// projectReserved proyecta un evento tipo reserva al esquema de 16 columnas.
// Los valores ausentes caen a string vacío, nunca a nil.
func projectReserved(profName string, ev models.CalendarEvent) models.Row {
	b := ev.Booking

	var bookingID any
	if b != nil {
		bookingID = b.ID
	} else {
		bookingID = ev.ID
	}

	servicio := ev.Title
	var duracion any = ""
	if b != nil && b.Service != nil {
		servicio = b.Service.Name
		duracion = b.Service.Duration
	}

	cliente, email, telefono := "", "", ""
	clienteNuevo := "No"
	if b != nil && b.Client != nil {
		cliente = strings.TrimSpace(b.Client.FirstName + " " + b.Client.LastName)
		email = b.Client.Email
		telefono = b.Client.Phone
		if b.Client.IsNewClient {
			clienteNuevo = "Si"
		}
	}

	var precio, monto any = "", ""
	estadoPago, tags, comentario := "", "", ""
	if b != nil {
		precio = b.Price
		monto = b.Amount
		estadoPago = b.PaymentStatus
		tags = strings.Join(b.Tags, ", ")
		comentario = b.Comment
	}

	return models.Row{
		"Booking ID":     bookingID,
		"Profesional":    profName,
		"Servicio":       servicio,
		"Inicio":         ev.Start,
		"Fin":            ev.End,
		"Duracion (min)": duracion,
		"Cliente":        cliente,
		"Email":          email,
		"Telefono":       telefono,
		"Precio":         precio,
		"Monto":          monto,
		"Estado Pago":    estadoPago,
		"Cliente Nuevo":  clienteNuevo,
		"Tags":           tags,
		"Comentario":     comentario,
		"Estado":         ev.Type,
	}
}

// projectBlocked proyecta un bloqueo/break al esquema de 7 columnas.
func projectBlocked(profName string, ev models.CalendarEvent) models.Row {
	return models.Row{
		"Event ID":    ev.ID,
		"Profesional": profName,
		"Tipo":        ev.Type,
		"Titulo":      ev.Title,
		"Descripcion": ev.Description,
		"Inicio":      ev.Start,
		"Fin":         ev.End,
	}
}

// sortByInicio ordena filas ascendente por hora de inicio. La comparación
// lexicográfica es válida porque el formato es fijo y con ceros a la
// izquierda (estilo ISO-8601).
func sortByInicio(rows []models.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := rows[i]["Inicio"].(string)
		b, _ := rows[j]["Inicio"].(string)
		return a < b
	})
}

// assemble combina las acumulaciones por local con el catálogo en el
// resultado final. Garantiza una entrada por local conocido: una entrada
// ausente significa cero filas, no error.
func assemble(locations []models.Location, reserved, blocked map[int][]models.Row) *models.ScrapedBookings {
	for _, loc := range locations {
		if _, ok := reserved[loc.Value]; !ok {
			reserved[loc.Value] = []models.Row{}
		}
		if _, ok := blocked[loc.Value]; !ok {
			blocked[loc.Value] = []models.Row{}
		}
	}
	return &models.ScrapedBookings{
		Locations: locations,
		Reserved:  reserved,
		Blocked:   blocked,
	}
}
