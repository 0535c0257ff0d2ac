package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/yourorg/agendacl/internal/models"
)

func sampleData() *models.ScrapedBookings {
	return &models.ScrapedBookings{
		Locations: []models.Location{
			{Label: "Sucursal Centro", Value: 1},
			{Label: "Sucursal Norte", Value: 2},
		},
		Reserved: map[int][]models.Row{
			1: {
				{"Booking ID": 100, "Profesional": "María Soto", "Servicio": "Corte",
					"Inicio": "2025-06-10 09:00", "Fin": "2025-06-10 09:45",
					"Duracion (min)": 45, "Cliente": "Ana Pérez", "Email": "ana@correo.cl",
					"Telefono": "+56911111111", "Precio": 15000.0, "Monto": 15000.0,
					"Estado Pago": "paid", "Cliente Nuevo": "No", "Tags": "vip",
					"Comentario": "", "Estado": "RESERVED"},
			},
			2: {},
		},
		Blocked: map[int][]models.Row{
			1: {},
			2: {},
		},
	}
}

func TestBuildWorkbookSheetsPerLocation(t *testing.T) {
	data := sampleData()

	f, err := BuildWorkbook(data.Locations, data.Reserved, models.ReservedHeaders)
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("Expected 2 sheets, got %d (%v)", len(sheets), sheets)
	}
	if sheets[0] != "Sucursal Centro" || sheets[1] != "Sucursal Norte" {
		t.Errorf("Unexpected sheet names: %v", sheets)
	}
}

func TestBuildWorkbookHeaderRow(t *testing.T) {
	data := sampleData()

	f, err := BuildWorkbook(data.Locations, data.Reserved, models.ReservedHeaders)
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}
	defer f.Close()

	for col, want := range models.ReservedHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		got, err := f.GetCellValue("Sucursal Centro", cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Errorf("Header %s: expected %q, got %q", cell, want, got)
		}
	}
}

func TestBuildWorkbookDataRow(t *testing.T) {
	data := sampleData()

	f, err := BuildWorkbook(data.Locations, data.Reserved, models.ReservedHeaders)
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Sucursal Centro", "A2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "100" {
		t.Errorf("Expected Booking ID 100 in A2, got %q", got)
	}

	// Hoja del local sin filas: sólo encabezado
	empty, err := f.GetCellValue("Sucursal Norte", "A2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if empty != "" {
		t.Errorf("Expected empty A2 on rowless sheet, got %q", empty)
	}
}

func TestWriteWorkbookFiles(t *testing.T) {
	dir := t.TempDir()
	data := sampleData()

	reservedPath := filepath.Join(dir, "bookings-reserved.xlsx")
	if err := WriteReservedFile(reservedPath, data); err != nil {
		t.Fatalf("WriteReservedFile failed: %v", err)
	}
	blockedPath := filepath.Join(dir, "bookings-blocked.xlsx")
	if err := WriteBlockedFile(blockedPath, data); err != nil {
		t.Fatalf("WriteBlockedFile failed: %v", err)
	}

	for _, path := range []string{reservedPath, blockedPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Expected file %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Errorf("File %s is empty", path)
		}
	}

	// El archivo debe poder reabrirse como workbook válido
	f, err := excelize.OpenFile(blockedPath)
	if err != nil {
		t.Fatalf("Reopening workbook failed: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Sucursal Centro", "A1")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "Event ID" {
		t.Errorf("Expected blocked header Event ID, got %q", got)
	}
}

func TestSanitizeSheetName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Sucursal Centro", "Sucursal Centro"},
		{"Local: Norte/Sur", "Local- Norte-Sur"},
		{"", "Hoja"},
		{"Nombre de sucursal extremadamente largo que no cabe", "Nombre de sucursal extremadamen"},
	}
	for _, c := range cases {
		if got := sanitizeSheetName(c.in); got != c.want {
			t.Errorf("sanitizeSheetName(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}
