package ingestion

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mr1hm/go-carbon-tracker/internal/models"
)

const suppliersCSV = `supplier_id,name,country,lat,lon,avg_lead_days
S001,Supplier A,India,21.3,80.1,12
S002,Supplier B,Germany,52.5,13.4,30.0
`

const shipmentsCSV = `shipment_id,supplier_id,origin_lat,origin_lon,dest_lat,dest_lon,distance_km,weight_tonnes,mode
SH0001,S001,21.3,80.1,22.0,81.0,120.5,3.2,road
SH0002,S002,52.5,13.4,50.1,8.7,410,12,Rail
SH0003,S001,21.3,80.1,20.0,79.5,95.25,0.5,hovercraft
`

func TestDecodeSuppliers(t *testing.T) {
	suppliers, err := DecodeSuppliers(strings.NewReader(suppliersCSV))
	if err != nil {
		t.Fatalf("DecodeSuppliers failed: %v", err)
	}
	if len(suppliers) != 2 {
		t.Fatalf("expected 2 suppliers, got %d", len(suppliers))
	}

	want := models.Supplier{ID: "S001", Name: "Supplier A", Country: "India", Latitude: 21.3, Longitude: 80.1, AvgLeadDays: 12}
	if suppliers[0] != want {
		t.Errorf("expected %+v, got %+v", want, suppliers[0])
	}
	if suppliers[1].AvgLeadDays != 30 {
		t.Errorf("expected lead time 30, got %d", suppliers[1].AvgLeadDays)
	}
}

func TestDecodeShipments(t *testing.T) {
	shipments, err := DecodeShipments(strings.NewReader(shipmentsCSV))
	if err != nil {
		t.Fatalf("DecodeShipments failed: %v", err)
	}
	if len(shipments) != 3 {
		t.Fatalf("expected 3 shipments, got %d", len(shipments))
	}

	s := shipments[0]
	if s.ID != "SH0001" || s.SupplierID != "S001" || s.DistanceKm != 120.5 || s.WeightTonnes != 3.2 || s.Mode != models.TransportModeRoad {
		t.Errorf("unexpected shipment: %+v", s)
	}
	if s.DestLat != 22.0 || s.DestLon != 81.0 || s.OriginLat != 21.3 || s.OriginLon != 80.1 {
		t.Errorf("unexpected coordinates: %+v", s)
	}
	if shipments[1].Mode != models.TransportModeRail {
		t.Errorf("expected mode normalized to rail, got %q", shipments[1].Mode)
	}
	if shipments[2].Mode != "hovercraft" {
		t.Errorf("expected unknown mode kept, got %q", shipments[2].Mode)
	}
}

func TestDecode_ColumnOrderIndependent(t *testing.T) {
	in := "lon,lat,avg_lead_days,country,name,supplier_id,extra\n80,21,5,India,A,S1,x\n"
	suppliers, err := DecodeSuppliers(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeSuppliers failed: %v", err)
	}
	if suppliers[0].ID != "S1" || suppliers[0].Latitude != 21 || suppliers[0].Longitude != 80 {
		t.Errorf("unexpected supplier: %+v", suppliers[0])
	}
}

func TestDecode_Empty(t *testing.T) {
	suppliers, err := DecodeSuppliers(strings.NewReader("supplier_id,name,country,lat,lon,avg_lead_days\n"))
	if err != nil {
		t.Fatalf("DecodeSuppliers failed: %v", err)
	}
	if suppliers == nil || len(suppliers) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", suppliers)
	}
}

func TestDecode_MalformedRecords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ships bool
		line  int
		field string
	}{
		{"no header", "", false, 0, "supplier_id"},
		{"missing column", "supplier_id,name,country,lat,lon\nS1,A,India,1,2\n", false, 0, "avg_lead_days"},
		{"empty id", "supplier_id,name,country,lat,lon,avg_lead_days\n,A,India,1,2,3\n", false, 2, "supplier_id"},
		{"bad lat", "supplier_id,name,country,lat,lon,avg_lead_days\nS1,A,India,north,2,3\n", false, 2, "lat"},
		{"bad lead days", "supplier_id,name,country,lat,lon,avg_lead_days\nS1,A,India,1,2,3.5\n", false, 2, "avg_lead_days"},
		{"duplicate supplier", "supplier_id,name,country,lat,lon,avg_lead_days\nS1,A,India,1,2,3\nS1,B,US,1,2,3\n", false, 3, "supplier_id"},
		{"short row", "supplier_id,name,country,lat,lon,avg_lead_days\nS1,A,India\n", false, 2, ""},
		{"bad distance", "shipment_id,supplier_id,origin_lat,origin_lon,dest_lat,dest_lon,distance_km,weight_tonnes,mode\nSH1,S1,1,2,3,4,far,1,road\n", true, 2, "distance_km"},
		{"empty supplier ref", "shipment_id,supplier_id,origin_lat,origin_lon,dest_lat,dest_lon,distance_km,weight_tonnes,mode\nSH1,,1,2,3,4,5,1,road\n", true, 2, "supplier_id"},
		{"NaN lat", "supplier_id,name,country,lat,lon,avg_lead_days\nS1,A,India,NaN,2,3\n", false, 2, "lat"},
		{"infinite lead days", "supplier_id,name,country,lat,lon,avg_lead_days\nS1,A,India,1,2,Inf\n", false, 2, "avg_lead_days"},
		{"oversized lead days", "supplier_id,name,country,lat,lon,avg_lead_days\nS1,A,India,1,2,1e300\n", false, 2, "avg_lead_days"},
		{"NaN distance", "shipment_id,supplier_id,origin_lat,origin_lon,dest_lat,dest_lon,distance_km,weight_tonnes,mode\nSH1,S1,1,2,3,4,NaN,1,road\n", true, 2, "distance_km"},
		{"infinite distance", "shipment_id,supplier_id,origin_lat,origin_lon,dest_lat,dest_lon,distance_km,weight_tonnes,mode\nSH1,S1,1,2,3,4,5,1,road\nSH2,S1,1,2,3,4,Inf,1,road\n", true, 3, "distance_km"},
		{"negative infinite weight", "shipment_id,supplier_id,origin_lat,origin_lon,dest_lat,dest_lon,distance_km,weight_tonnes,mode\nSH1,S1,1,2,3,4,5,-Inf,road\n", true, 2, "weight_tonnes"},
		{"missing weight column", "shipment_id,supplier_id,origin_lat,origin_lon,dest_lat,dest_lon,distance_km,mode\nSH1,S1,1,2,3,4,5,road\n", true, 0, "weight_tonnes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.ships {
				_, err = DecodeShipments(strings.NewReader(tt.input))
			} else {
				_, err = DecodeSuppliers(strings.NewReader(tt.input))
			}
			if !errors.Is(err, ErrMalformedRecord) {
				t.Fatalf("expected ErrMalformedRecord, got %v", err)
			}
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("expected *RowError, got %T", err)
			}
			if rowErr.Line != tt.line {
				t.Errorf("expected line %d, got %d", tt.line, rowErr.Line)
			}
			if rowErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, rowErr.Field)
			}
		})
	}
}

func TestEncodeDecode_PreservesTables(t *testing.T) {
	suppliers, _ := DecodeSuppliers(strings.NewReader(suppliersCSV))
	shipments, _ := DecodeShipments(strings.NewReader(shipmentsCSV))

	var sb, shb bytes.Buffer
	if err := EncodeSuppliers(&sb, suppliers); err != nil {
		t.Fatalf("EncodeSuppliers failed: %v", err)
	}
	if err := EncodeShipments(&shb, shipments); err != nil {
		t.Fatalf("EncodeShipments failed: %v", err)
	}

	gotSuppliers, err := DecodeSuppliers(&sb)
	if err != nil {
		t.Fatalf("DecodeSuppliers failed: %v", err)
	}
	gotShipments, err := DecodeShipments(&shb)
	if err != nil {
		t.Fatalf("DecodeShipments failed: %v", err)
	}

	for i := range suppliers {
		if suppliers[i] != gotSuppliers[i] {
			t.Errorf("supplier %d: expected %+v, got %+v", i, suppliers[i], gotSuppliers[i])
		}
	}
	for i := range shipments {
		if shipments[i] != gotShipments[i] {
			t.Errorf("shipment %d: expected %+v, got %+v", i, shipments[i], gotShipments[i])
		}
	}
}
