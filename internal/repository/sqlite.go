package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mr1hm/go-carbon-tracker/internal/models"
	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writes
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS suppliers (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			country TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			avg_lead_days INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS shipments (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			supplier_id TEXT NOT NULL,
			origin_lat REAL NOT NULL,
			origin_lon REAL NOT NULL,
			dest_lat REAL NOT NULL,
			dest_lon REAL NOT NULL,
			distance_km REAL NOT NULL,
			weight_tonnes REAL NOT NULL,
			mode TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_shipments_supplier_id ON shipments(supplier_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) ReplaceDataset(ctx context.Context, suppliers []models.Supplier, shipments []models.Shipment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"shipments", "suppliers"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}

	supStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO suppliers (id, name, country, latitude, longitude, avg_lead_days)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing supplier insert: %w", err)
	}
	defer supStmt.Close()

	for _, sup := range suppliers {
		if _, err := supStmt.ExecContext(ctx, sup.ID, sup.Name, sup.Country, sup.Latitude, sup.Longitude, sup.AvgLeadDays); err != nil {
			return fmt.Errorf("error inserting supplier %s: %w", sup.ID, err)
		}
	}

	shipStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO shipments (id, supplier_id, origin_lat, origin_lon, dest_lat, dest_lon, distance_km, weight_tonnes, mode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing shipment insert: %w", err)
	}
	defer shipStmt.Close()

	for _, sh := range shipments {
		if _, err := shipStmt.ExecContext(ctx, sh.ID, sh.SupplierID, sh.OriginLat, sh.OriginLon,
			sh.DestLat, sh.DestLon, sh.DistanceKm, sh.WeightTonnes, string(sh.Mode)); err != nil {
			return fmt.Errorf("error inserting shipment %s: %w", sh.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing dataset: %w", err)
	}
	return nil
}

func (s *SQLiteDB) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, country, latitude, longitude, avg_lead_days
		FROM suppliers ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("error querying suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := []models.Supplier{}
	for rows.Next() {
		var sup models.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Country, &sup.Latitude, &sup.Longitude, &sup.AvgLeadDays); err != nil {
			return nil, fmt.Errorf("error scanning supplier: %w", err)
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

const shipmentColumns = `id, supplier_id, origin_lat, origin_lon, dest_lat, dest_lon, distance_km, weight_tonnes, mode`

type scanner interface {
	Scan(dest ...any) error
}

func scanShipment(row scanner) (models.Shipment, error) {
	var (
		sh   models.Shipment
		mode string
	)
	err := row.Scan(&sh.ID, &sh.SupplierID, &sh.OriginLat, &sh.OriginLon,
		&sh.DestLat, &sh.DestLon, &sh.DistanceKm, &sh.WeightTonnes, &mode)
	sh.Mode = models.TransportMode(mode)
	return sh, err
}

func (s *SQLiteDB) ListShipments(ctx context.Context) ([]models.Shipment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+shipmentColumns+` FROM shipments ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("error querying shipments: %w", err)
	}
	defer rows.Close()

	shipments := []models.Shipment{}
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning shipment: %w", err)
		}
		shipments = append(shipments, sh)
	}
	return shipments, rows.Err()
}

func (s *SQLiteDB) GetShipment(ctx context.Context, id string) (*models.Shipment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = ?`, id)
	sh, err := scanShipment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("error getting shipment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting shipment %s: %w", id, err)
	}
	return &sh, nil
}

func (s *SQLiteDB) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM suppliers), (SELECT COUNT(*) FROM shipments)`).Scan(&c.Suppliers, &c.Shipments)
	if err != nil {
		return Counts{}, fmt.Errorf("error counting dataset: %w", err)
	}
	return c, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
