package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mr1hm/go-carbon-tracker/internal/models"
)

// ErrMalformedRecord marks structural problems in input tables: missing
// columns, empty ids, unparsable or non-finite numbers or duplicate ids.
var ErrMalformedRecord = errors.New("malformed record")

var errNonFinite = errors.New("non-finite number")

var (
	SupplierColumns = []string{"supplier_id", "name", "country", "lat", "lon", "avg_lead_days"}
	ShipmentColumns = []string{"shipment_id", "supplier_id", "origin_lat", "origin_lon", "dest_lat", "dest_lon", "distance_km", "weight_tonnes", "mode"}
)

type RowError struct {
	Table string
	Line  int // 1-based line in the CSV, 0 for header problems
	Field string
	Err   error
}

func (e *RowError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: column %q: %v", e.Table, e.Field, e.Err)
	}
	return fmt.Sprintf("%s line %d: field %q: %v", e.Table, e.Line, e.Field, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrMalformedRecord, e.Err}
}

type table struct {
	name    string
	reader  *csv.Reader
	columns map[string]int
	record  []string
	line    int
}

func newTable(name string, r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &RowError{Table: name, Field: required[0], Err: errors.New("missing header")}
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s header: %w", name, err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range required {
		if _, ok := columns[c]; !ok {
			return nil, &RowError{Table: name, Field: c, Err: errors.New("missing column")}
		}
	}

	return &table{name: name, reader: cr, columns: columns}, nil
}

// next advances to the next record. It returns io.EOF when the table is exhausted.
func (t *table) next() error {
	rec, err := t.reader.Read()
	if err != nil {
		if err == io.EOF {
			return err
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return &RowError{Table: t.name, Line: perr.Line, Err: perr.Err}
		}
		return fmt.Errorf("error reading %s: %w", t.name, err)
	}
	t.line, _ = t.reader.FieldPos(0)
	t.record = rec
	return nil
}

func (t *table) fail(field string, err error) error {
	return &RowError{Table: t.name, Line: t.line, Field: field, Err: err}
}

func (t *table) str(field string) string {
	return strings.TrimSpace(t.record[t.columns[field]])
}

func (t *table) id(field string) (string, error) {
	v := t.str(field)
	if v == "" {
		return "", t.fail(field, errors.New("empty value"))
	}
	return v, nil
}

func (t *table) float(field string) (float64, error) {
	v, err := strconv.ParseFloat(t.str(field), 64)
	if err != nil {
		return 0, t.fail(field, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, t.fail(field, errNonFinite)
	}
	return v, nil
}

func (t *table) integer(field string) (int, error) {
	raw := t.str(field)
	v, err := strconv.Atoi(raw)
	if err == nil {
		return v, nil
	}
	// tolerate integral floats such as "12.0" written by spreadsheet tools
	f, ferr := strconv.ParseFloat(raw, 64)
	if ferr != nil {
		return 0, t.fail(field, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, t.fail(field, errNonFinite)
	}
	if f < math.MinInt32 || f > math.MaxInt32 || f != math.Trunc(f) {
		return 0, t.fail(field, err)
	}
	return int(f), nil
}

func DecodeSuppliers(r io.Reader) ([]models.Supplier, error) {
	t, err := newTable("suppliers", r, SupplierColumns)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	suppliers := []models.Supplier{}
	for {
		if err := t.next(); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		var s models.Supplier
		if s.ID, err = t.id("supplier_id"); err != nil {
			return nil, err
		}
		if _, dup := seen[s.ID]; dup {
			return nil, t.fail("supplier_id", fmt.Errorf("duplicate id %s", s.ID))
		}
		seen[s.ID] = struct{}{}

		s.Name = t.str("name")
		s.Country = t.str("country")
		if s.Latitude, err = t.float("lat"); err != nil {
			return nil, err
		}
		if s.Longitude, err = t.float("lon"); err != nil {
			return nil, err
		}
		if s.AvgLeadDays, err = t.integer("avg_lead_days"); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, nil
}

func DecodeShipments(r io.Reader) ([]models.Shipment, error) {
	t, err := newTable("shipments", r, ShipmentColumns)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	shipments := []models.Shipment{}
	for {
		if err := t.next(); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		var s models.Shipment
		if s.ID, err = t.id("shipment_id"); err != nil {
			return nil, err
		}
		if _, dup := seen[s.ID]; dup {
			return nil, t.fail("shipment_id", fmt.Errorf("duplicate id %s", s.ID))
		}
		seen[s.ID] = struct{}{}

		if s.SupplierID, err = t.id("supplier_id"); err != nil {
			return nil, err
		}
		floats := []struct {
			field string
			dst   *float64
		}{
			{"origin_lat", &s.OriginLat},
			{"origin_lon", &s.OriginLon},
			{"dest_lat", &s.DestLat},
			{"dest_lon", &s.DestLon},
			{"distance_km", &s.DistanceKm},
			{"weight_tonnes", &s.WeightTonnes},
		}
		for _, f := range floats {
			if *f.dst, err = t.float(f.field); err != nil {
				return nil, err
			}
		}
		// unknown modes are kept as-is and priced with the fallback factor
		s.Mode = models.ParseTransportMode(t.str("mode"))
		shipments = append(shipments, s)
	}
	return shipments, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func EncodeSuppliers(w io.Writer, suppliers []models.Supplier) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SupplierColumns); err != nil {
		return fmt.Errorf("error writing suppliers header: %w", err)
	}
	for _, s := range suppliers {
		rec := []string{s.ID, s.Name, s.Country, formatFloat(s.Latitude), formatFloat(s.Longitude), strconv.Itoa(s.AvgLeadDays)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("error writing supplier %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func EncodeShipments(w io.Writer, shipments []models.Shipment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ShipmentColumns); err != nil {
		return fmt.Errorf("error writing shipments header: %w", err)
	}
	for _, s := range shipments {
		rec := []string{
			s.ID, s.SupplierID,
			formatFloat(s.OriginLat), formatFloat(s.OriginLon),
			formatFloat(s.DestLat), formatFloat(s.DestLon),
			formatFloat(s.DistanceKm), formatFloat(s.WeightTonnes),
			string(s.Mode),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("error writing shipment %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
