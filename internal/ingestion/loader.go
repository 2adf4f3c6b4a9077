package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mr1hm/go-carbon-tracker/internal/models"
)

// Loader reads supplier and shipment tables from local paths or http(s) URLs.
type Loader struct {
	client *http.Client
}

func NewLoader(timeout time.Duration) *Loader {
	return &Loader{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (l *Loader) Load(ctx context.Context, suppliersSrc, shipmentsSrc string) ([]models.Supplier, []models.Shipment, error) {
	suppliers, err := loadTable(ctx, l, suppliersSrc, DecodeSuppliers)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading suppliers from %s: %w", suppliersSrc, err)
	}

	shipments, err := loadTable(ctx, l, shipmentsSrc, DecodeShipments)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading shipments from %s: %w", shipmentsSrc, err)
	}

	if n := CountUnknownModes(shipments); n > 0 {
		slog.Warn("shipments use modes without a built-in factor", "count", n)
	}
	if orphans := CountOrphans(suppliers, shipments); orphans > 0 {
		slog.Warn("shipments reference unknown suppliers", "count", orphans)
	}

	slog.Info("dataset loaded", "suppliers", len(suppliers), "shipments", len(shipments))
	return suppliers, shipments, nil
}

func loadTable[T any](ctx context.Context, l *Loader, src string, decode func(io.Reader) ([]T, error)) ([]T, error) {
	rc, err := l.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return decode(rc)
}

func (l *Loader) open(ctx context.Context, src string) (io.ReadCloser, error) {
	if !isURL(src) {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("error opening file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	return resp.Body, nil
}

func isURL(src string) bool {
	s := strings.ToLower(src)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// CountOrphans returns how many shipments reference a supplier id that is
// not in the supplier table.
func CountOrphans(suppliers []models.Supplier, shipments []models.Shipment) int {
	known := make(map[string]struct{}, len(suppliers))
	for _, s := range suppliers {
		known[s.ID] = struct{}{}
	}

	n := 0
	for _, sh := range shipments {
		if _, ok := known[sh.SupplierID]; !ok {
			n++
		}
	}
	return n
}

// CountUnknownModes returns how many shipments carry a transport mode without
// a built-in emission factor.
func CountUnknownModes(shipments []models.Shipment) int {
	n := 0
	for _, sh := range shipments {
		if !sh.Mode.Known() {
			n++
		}
	}
	return n
}
