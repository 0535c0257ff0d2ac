package progress

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"

	"github.com/yourorg/agendacl/internal/agendapro"
)

// ============================================================================
// HUB DE PROGRESO EN VIVO
// ============================================================================
// Publica el avance de las corridas de scraping a clientes WebSocket. Una
// corrida completa son cientos de requests y varios minutos: sin esto el
// frontend sólo puede mostrar un spinner. Los eventos son tipados (done/total)
// en vez de líneas de consola parseadas.

// Hub maneja las conexiones WebSocket de los clientes de progreso.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	stop       chan bool
	mu         sync.RWMutex
}

// NewHub crea el hub y arranca su loop de despacho. Llamar Stop al apagar el
// servidor.
func NewHub() *Hub {
	h := &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		stop:       make(chan bool),
		clients:    make(map[*websocket.Conn]bool),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("🔌 Cliente de progreso conectado. Total: %d", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("🔌 Cliente de progreso desconectado. Total: %d", total)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					log.Printf("Error enviando progreso al cliente: %v", err)
					client.Close()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()

		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*websocket.Conn]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Stop detiene el loop de despacho y cierra las conexiones activas.
func (h *Hub) Stop() {
	h.stop <- true
}

// HandleWebSocket registra la conexión y la drena hasta que el cliente corta.
// Los clientes sólo escuchan: cualquier mensaje entrante se descarta.
func (h *Hub) HandleWebSocket(conn *websocket.Conn) {
	h.register <- conn
	defer func() {
		h.unregister <- conn
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// ClientCount retorna cuántos clientes están conectados.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// progressMessage es el sobre de un evento de avance.
type progressMessage struct {
	Type  string                  `json:"type"`
	Event agendapro.ProgressEvent `json:"event"`
}

// runMessage es el sobre de inicio/fin/error de una corrida.
type runMessage struct {
	Type  string `json:"type"`
	RunID string `json:"run_id"`
	Error string `json:"error,omitempty"`
}

// SendProgress publica un evento de avance a todos los clientes. Si el canal
// está lleno el evento se descarta: el progreso es best-effort, nunca debe
// frenar la corrida.
func (h *Hub) SendProgress(ev agendapro.ProgressEvent) {
	if h.ClientCount() == 0 {
		return
	}

	data, err := json.Marshal(progressMessage{Type: "progress", Event: ev})
	if err != nil {
		log.Printf("Error al serializar evento de progreso: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
	}
}

// SendRunDone anuncia el fin exitoso de una corrida.
func (h *Hub) SendRunDone(runID string) {
	h.sendRun(runMessage{Type: "run_done", RunID: runID})
}

// SendRunError anuncia que una corrida abortó.
func (h *Hub) SendRunError(runID, errMsg string) {
	h.sendRun(runMessage{Type: "run_error", RunID: runID, Error: errMsg})
}

func (h *Hub) sendRun(msg runMessage) {
	if h.ClientCount() == 0 {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error al serializar estado de corrida: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
	}
}
