package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yourorg/agendacl/internal/models"
)

// ============================================================================
// SALIDA EXCEL
// ============================================================================
// Genera un workbook con una hoja por local: fila de encabezado con estilo,
// filas alternadas, autofiltro y panel congelado. El formato imita la planilla
// que el equipo de operaciones ya conoce; cambios cosméticos rompen macros
// ajenas, avisar antes de tocar.

const (
	maxSheetNameLen = 31
	maxColWidth     = 40
)

// sanitizeSheetName adapta una etiqueta de local a nombre de hoja válido:
// Excel prohíbe ciertos caracteres y limita el largo a 31.
func sanitizeSheetName(label string) string {
	r := strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")")
	name := r.Replace(label)
	if name == "" {
		name = "Hoja"
	}
	if runes := []rune(name); len(runes) > maxSheetNameLen {
		name = string(runes[:maxSheetNameLen])
	}
	return name
}

// cellString formatea un valor de fila para medir anchos de columna.
func cellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// BuildWorkbook arma el workbook en memoria: una hoja por local en orden de
// catálogo, con las columnas en el orden de headers. Los locales sin filas
// igual obtienen su hoja (sólo encabezado): una hoja ausente se confunde con
// un error de scraping.
func BuildWorkbook(locations []models.Location, rows map[int][]models.Row, headers []string) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F5496"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: thinBorder(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	altStyle, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"D6E4F0"}, Pattern: 1},
		Border: thinBorder(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating row style: %w", err)
	}

	plainStyle, err := f.NewStyle(&excelize.Style{
		Border: thinBorder(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating row style: %w", err)
	}

	for _, loc := range locations {
		sheet := sanitizeSheetName(loc.Label)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("creating sheet %q: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, headers, rows[loc.Value], headerStyle, altStyle, plainStyle); err != nil {
			return nil, fmt.Errorf("writing sheet %q: %w", sheet, err)
		}
	}

	// La hoja por defecto queda vacía; se elimina salvo que sea la única.
	if len(locations) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("removing default sheet: %w", err)
		}
	}

	return f, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows []models.Row, headerStyle, altStyle, plainStyle int) error {
	widths := make([]int, len(headers))

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		widths[col] = len(h)
	}

	for i, row := range rows {
		rowNum := i + 2
		style := plainStyle
		if rowNum%2 == 0 {
			style = altStyle
		}
		for col, h := range headers {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return err
			}
			val := row[h]
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
			if n := len(cellString(val)); n > widths[col] {
				widths[col] = n
			}
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for col := range headers {
		w := widths[col]
		if w > maxColWidth {
			w = maxColWidth
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(w+3)); err != nil {
			return err
		}
	}

	if err := f.AutoFilter(sheet, fmt.Sprintf("A1:%s1", lastCol), nil); err != nil {
		return err
	}

	// Encabezado siempre visible al hacer scroll.
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "D9D9D9", Style: 1},
		{Type: "right", Color: "D9D9D9", Style: 1},
		{Type: "top", Color: "D9D9D9", Style: 1},
		{Type: "bottom", Color: "D9D9D9", Style: 1},
	}
}

// WriteWorkbookFile arma y persiste el workbook en path.
func WriteWorkbookFile(path string, locations []models.Location, rows map[int][]models.Row, headers []string) error {
	f, err := BuildWorkbook(locations, rows, headers)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// WriteReservedFile persiste la planilla de reservas (16 columnas).
func WriteReservedFile(path string, data *models.ScrapedBookings) error {
	return WriteWorkbookFile(path, data.Locations, data.Reserved, models.ReservedHeaders)
}

// WriteBlockedFile persiste la planilla de bloqueos/breaks (7 columnas).
func WriteBlockedFile(path string, data *models.ScrapedBookings) error {
	return WriteWorkbookFile(path, data.Locations, data.Blocked, models.BlockedHeaders)
}
