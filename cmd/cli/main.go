package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/yourorg/agendacl/internal/agendapro"
	"github.com/yourorg/agendacl/internal/excel"
	"github.com/yourorg/agendacl/internal/models"
	"github.com/yourorg/agendacl/internal/validation"
)

// Corrida completa desde la terminal, sin servidor: escribe las dos planillas
// en el directorio de trabajo (o XLSX_OUTPUT_DIR).

func main() {
	_ = godotenv.Load()

	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "Uso: agendacl <email> <password> <meses>")
		os.Exit(2)
	}

	months, err := strconv.Atoi(os.Args[3])
	if err != nil {
		fmt.Fprintf(os.Stderr, "meses inválido: %q\n", os.Args[3])
		os.Exit(2)
	}

	params := models.BookingParams{
		Email:    os.Args[1],
		Password: os.Args[2],
		Months:   months,
	}
	if err := validation.ValidateBookingParams(params); err != nil {
		fmt.Fprintln(os.Stderr, "parámetros inválidos:", err)
		os.Exit(2)
	}

	scraper := agendapro.NewScraper()

	data, err := scraper.ScrapeBookings(context.Background(), params)
	if err != nil {
		log.Fatalf("❌ Corrida falló: %v", err)
	}

	reservedPath := outputPath("bookings-reserved.xlsx")
	if err := excel.WriteReservedFile(reservedPath, data); err != nil {
		log.Fatalf("❌ Error escribiendo %s: %v", reservedPath, err)
	}
	blockedPath := outputPath("bookings-blocked.xlsx")
	if err := excel.WriteBlockedFile(blockedPath, data); err != nil {
		log.Fatalf("❌ Error escribiendo %s: %v", blockedPath, err)
	}

	reserved, blocked := 0, 0
	for _, rows := range data.Reserved {
		reserved += len(rows)
	}
	for _, rows := range data.Blocked {
		blocked += len(rows)
	}

	log.Printf("✅ Listo: %d reservas -> %s | %d bloqueos -> %s",
		reserved, reservedPath, blocked, blockedPath)
}

func outputPath(name string) string {
	if dir := os.Getenv("XLSX_OUTPUT_DIR"); dir != "" {
		return filepath.Join(dir, name)
	}
	return name
}
