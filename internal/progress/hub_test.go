package progress

import (
	"testing"
	"time"

	"github.com/yourorg/agendacl/internal/agendapro"
)

func TestHubStartsEmpty(t *testing.T) {
	h := NewHub()
	if h.ClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", h.ClientCount())
	}
}

func TestHubStop(t *testing.T) {
	h := NewHub()

	// Stop debe retornar en cuanto el loop de despacho lo procesa
	done := make(chan bool)
	go func() {
		h.Stop()
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}

	if h.ClientCount() != 0 {
		t.Errorf("Expected 0 clients after stop, got %d", h.ClientCount())
	}

	// Los envíos posteriores al stop siguen siendo no-op seguros
	h.SendProgress(agendapro.ProgressEvent{RunID: "run-1", Done: 1, Total: 1})
	h.SendRunDone("run-1")
}

func TestSendProgressWithoutClientsDoesNotBlock(t *testing.T) {
	h := NewHub()

	// Sin clientes conectados el envío debe ser un no-op inmediato: el
	// progreso nunca puede frenar una corrida.
	done := make(chan bool)
	go func() {
		for i := 0; i < 1000; i++ {
			h.SendProgress(agendapro.ProgressEvent{
				RunID: "run-1", Done: i, Total: 1000,
				Location: "Centro", Day: "2025-06-10",
			})
		}
		h.SendRunDone("run-1")
		h.SendRunError("run-2", "API request failed: 503 Service Unavailable")
		done <- true
	}()

	<-done
}
