package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mr1hm/go-carbon-tracker/internal/ingestion"
	"github.com/mr1hm/go-carbon-tracker/internal/logging"
	"github.com/mr1hm/go-carbon-tracker/internal/models"
	"github.com/mr1hm/go-carbon-tracker/internal/sample"
)

func main() {
	defaults := sample.DefaultOptions()

	seed := flag.Uint64("seed", defaults.Seed, "random seed")
	nSuppliers := flag.Int("suppliers", defaults.Suppliers, "number of suppliers")
	nShipments := flag.Int("shipments", defaults.Shipments, "number of shipments")
	out := flag.String("out", "data", "output directory")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logging.Setup(*level)

	suppliers, shipments, err := sample.Generate(sample.Options{
		Seed:      *seed,
		Suppliers: *nSuppliers,
		Shipments: *nShipments,
	})
	if err != nil {
		logging.Fatalf("Failed to generate sample data: %v", err)
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		logging.Fatalf("Failed to create output directory: %v", err)
	}

	if err := writeCSV(filepath.Join(*out, "suppliers.csv"), func(f *os.File) error {
		return ingestion.EncodeSuppliers(f, suppliers)
	}); err != nil {
		logging.Fatalf("Failed to write suppliers: %v", err)
	}
	if err := writeCSV(filepath.Join(*out, "shipments.csv"), func(f *os.File) error {
		return ingestion.EncodeShipments(f, shipments)
	}); err != nil {
		logging.Fatalf("Failed to write shipments: %v", err)
	}

	slog.Info("generated sample data", "dir", *out, "seed", *seed,
		"suppliers", len(suppliers), "shipments", len(shipments), "modes", modeCounts(shipments))
}

func writeCSV(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func modeCounts(shipments []models.Shipment) map[string]int {
	counts := make(map[string]int)
	for _, s := range shipments {
		counts[string(s.Mode)]++
	}
	return counts
}
