package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mr1hm/go-carbon-tracker/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func testDataset() ([]models.Supplier, []models.Shipment) {
	suppliers := []models.Supplier{
		{ID: "S002", Name: "Supplier B", Country: "China", Latitude: 25.1, Longitude: 90.2, AvgLeadDays: 14},
		{ID: "S001", Name: "Supplier A", Country: "India", Latitude: 20.5, Longitude: 78.9, AvgLeadDays: 7},
	}
	shipments := []models.Shipment{
		{ID: "SH0002", SupplierID: "S001", OriginLat: 20.5, OriginLon: 78.9, DestLat: 21, DestLon: 79, DistanceKm: 75.5, WeightTonnes: 3.25, Mode: models.TransportModeRoad},
		{ID: "SH0001", SupplierID: "S002", OriginLat: 25.1, OriginLon: 90.2, DestLat: 24, DestLon: 91, DistanceKm: 150, WeightTonnes: 10, Mode: "barge"},
		{ID: "SH0003", SupplierID: "S404", DistanceKm: 1, WeightTonnes: 1, Mode: models.TransportModeAir},
	}
	return suppliers, shipments
}

func TestSQLiteDB_ReplaceAndList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	suppliers, shipments := testDataset()

	if err := db.ReplaceDataset(ctx, suppliers, shipments); err != nil {
		t.Fatalf("ReplaceDataset failed: %v", err)
	}

	gotSuppliers, err := db.ListSuppliers(ctx)
	if err != nil {
		t.Fatalf("ListSuppliers failed: %v", err)
	}
	if len(gotSuppliers) != len(suppliers) {
		t.Fatalf("expected %d suppliers, got %d", len(suppliers), len(gotSuppliers))
	}
	for i := range suppliers {
		if gotSuppliers[i] != suppliers[i] {
			t.Errorf("supplier %d: expected %+v, got %+v", i, suppliers[i], gotSuppliers[i])
		}
	}

	gotShipments, err := db.ListShipments(ctx)
	if err != nil {
		t.Fatalf("ListShipments failed: %v", err)
	}
	if len(gotShipments) != len(shipments) {
		t.Fatalf("expected %d shipments, got %d", len(shipments), len(gotShipments))
	}
	for i := range shipments {
		if gotShipments[i] != shipments[i] {
			t.Errorf("shipment %d: expected %+v, got %+v", i, shipments[i], gotShipments[i])
		}
	}
}

func TestSQLiteDB_ReplaceOverwritesPrevious(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	suppliers, shipments := testDataset()

	if err := db.ReplaceDataset(ctx, suppliers, shipments); err != nil {
		t.Fatalf("ReplaceDataset failed: %v", err)
	}
	if err := db.ReplaceDataset(ctx, suppliers[:1], shipments[:1]); err != nil {
		t.Fatalf("second ReplaceDataset failed: %v", err)
	}

	c, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if c.Suppliers != 1 || c.Shipments != 1 {
		t.Errorf("expected 1/1 after replace, got %+v", c)
	}
}

func TestSQLiteDB_ReplaceIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	suppliers, shipments := testDataset()
	if err := db.ReplaceDataset(ctx, suppliers, shipments); err != nil {
		t.Fatalf("ReplaceDataset failed: %v", err)
	}

	// duplicate shipment id violates the UNIQUE constraint
	dup := []models.Shipment{shipments[0], shipments[0]}
	if err := db.ReplaceDataset(ctx, suppliers, dup); err == nil {
		t.Fatal("expected error for duplicate shipment id")
	}

	c, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if c.Suppliers != 2 || c.Shipments != 3 {
		t.Errorf("expected previous dataset to survive failed replace, got %+v", c)
	}
}

func TestSQLiteDB_GetShipment(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	suppliers, shipments := testDataset()
	if err := db.ReplaceDataset(ctx, suppliers, shipments); err != nil {
		t.Fatalf("ReplaceDataset failed: %v", err)
	}

	got, err := db.GetShipment(ctx, "SH0001")
	if err != nil {
		t.Fatalf("GetShipment failed: %v", err)
	}
	if *got != shipments[1] {
		t.Errorf("expected %+v, got %+v", shipments[1], *got)
	}

	_, err = db.GetShipment(ctx, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	suppliers, err := db.ListSuppliers(ctx)
	if err != nil {
		t.Fatalf("ListSuppliers failed: %v", err)
	}
	if suppliers == nil || len(suppliers) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", suppliers)
	}

	c, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if c != (Counts{}) {
		t.Errorf("expected zero counts, got %+v", c)
	}
}

func TestSQLiteDB_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carbon.db")
	ctx := context.Background()
	suppliers, shipments := testDataset()

	db, err := NewSQLiteDB(path)
	if err != nil {
		t.Fatalf("NewSQLiteDB failed: %v", err)
	}
	if err := db.ReplaceDataset(ctx, suppliers, shipments); err != nil {
		t.Fatalf("ReplaceDataset failed: %v", err)
	}
	db.Close()

	reopened, err := NewSQLiteDB(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	c, err := reopened.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if c.Suppliers != 2 || c.Shipments != 3 {
		t.Errorf("expected dataset to persist, got %+v", c)
	}
}
