package agendapro

import "time"

// FormatDay formatea una fecha como YYYY-MM-DD (el formato de query de la API).
func FormatDay(t time.Time) string {
	return t.Format("2006-01-02")
}

// ExpandRange expande una fecha de inicio y un número de meses en un día por
// entrada, desde start hasta start+months meses (ambos inclusive), ascendente.
// La API entrega más detalle cuando se consulta día por día, así que la unidad
// de consulta es siempre un día.
//
// La aritmética de meses usa time.Time.AddDate, que normaliza el overflow de
// fin de mes (31 de enero + 1 mes cae en marzo). Ese comportamiento está
// fijado por test: es la semántica de la librería de fechas, no una decisión
// propia.
func ExpandRange(start time.Time, months int) []string {
	start = midnight(start)
	end := start.AddDate(0, months, 0)

	var days []string
	for cursor := start; !cursor.After(end); cursor = cursor.AddDate(0, 0, 1) {
		days = append(days, FormatDay(cursor))
	}
	return days
}

// midnight recorta la hora dejando la fecha en la zona horaria original.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
