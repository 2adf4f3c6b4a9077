package repository

import (
	"context"
	"errors"

	"github.com/mr1hm/go-carbon-tracker/internal/models"
)

var ErrNotFound = errors.New("not found")

type Counts struct {
	Suppliers int
	Shipments int
}

// DatasetRepository stores the current supplier and shipment tables. The
// dataset is replaced as a whole; rows are returned in insertion order.
type DatasetRepository interface {
	ReplaceDataset(ctx context.Context, suppliers []models.Supplier, shipments []models.Shipment) error
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	ListShipments(ctx context.Context) ([]models.Shipment, error)
	GetShipment(ctx context.Context, id string) (*models.Shipment, error)
	Counts(ctx context.Context) (Counts, error)
}
