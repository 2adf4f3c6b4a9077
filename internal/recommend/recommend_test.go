package recommend

import (
	"math"
	"testing"

	"github.com/mr1hm/go-carbon-tracker/internal/models"
)

func enriched(id, supplierID string, distance, weight, emissions float64) models.EnrichedShipment {
	return models.EnrichedShipment{
		Shipment: models.Shipment{
			ID:           id,
			SupplierID:   supplierID,
			DistanceKm:   distance,
			WeightTonnes: weight,
			Mode:         models.TransportModeRoad,
		},
		EmissionsKg: emissions,
	}
}

func TestEfficiencies(t *testing.T) {
	history := []models.EnrichedShipment{
		enriched("1", "S1", 100, 2, 6),  // 200 tkm
		enriched("2", "S1", 100, 1, 3),  // 100 tkm
		enriched("3", "S2", 0, 5, 0),    // ignored
		enriched("4", "S2", 50, 2, 8),   // 100 tkm
		enriched("5", "S3", 0, 0, 0),    // only zero work
		enriched("6", "S4", -10, 2, -1), // negative work ignored
	}

	eff := Efficiencies(history)

	tests := map[string]float64{
		"S1": 0.03,
		"S2": 0.08,
		"S3": FallbackEfficiency,
		"S4": FallbackEfficiency,
	}
	for id, want := range tests {
		got, ok := eff[id]
		if !ok {
			t.Errorf("%s: missing efficiency", id)
			continue
		}
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("%s: expected %v, got %v", id, want, got)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("%s: efficiency must be finite, got %v", id, got)
		}
	}
	if _, ok := eff["S9"]; ok {
		t.Error("suppliers without history should not be present")
	}
}

func TestSuggest_RanksByHypotheticalEmissions(t *testing.T) {
	suppliers := []models.Supplier{
		{ID: "S2", Name: "Supplier B"},
		{ID: "S1", Name: "Supplier A"},
	}
	history := []models.EnrichedShipment{
		enriched("1", "S1", 100, 1, 3), // 0.03
		enriched("2", "S2", 100, 1, 8), // 0.08
	}

	got := Suggest(Target{DistanceKm: 50, WeightTonnes: 1, Mode: models.TransportModeAir}, history, suppliers, 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(got))
	}
	if got[0].Supplier.ID != "S1" || math.Abs(got[0].HypotheticalEmissionsKg-1.5) > 1e-9 {
		t.Errorf("expected S1 first at 1.5 kg, got %s at %v", got[0].Supplier.ID, got[0].HypotheticalEmissionsKg)
	}
	if got[1].Supplier.ID != "S2" || math.Abs(got[1].HypotheticalEmissionsKg-4.0) > 1e-9 {
		t.Errorf("expected S2 second at 4.0 kg, got %s at %v", got[1].Supplier.ID, got[1].HypotheticalEmissionsKg)
	}
}

func TestSuggest_FallbackForSuppliersWithoutHistory(t *testing.T) {
	suppliers := []models.Supplier{{ID: "S1"}, {ID: "NEW"}, {ID: "S3"}}
	history := []models.EnrichedShipment{
		enriched("1", "S1", 100, 1, 10), // 0.1
		enriched("2", "S3", 100, 1, 1),  // 0.01
		enriched("3", "GHOST", 10, 1, 0.1),
	}

	got := Suggest(Target{DistanceKm: 10, WeightTonnes: 10}, history, suppliers, 10)
	if len(got) != 3 {
		t.Fatalf("expected only supplier-table entries, got %d", len(got))
	}

	want := []struct {
		id         string
		efficiency float64
		hasHistory bool
	}{
		{"S3", 0.01, true},
		{"NEW", FallbackEfficiency, false},
		{"S1", 0.1, true},
	}
	for i, w := range want {
		if got[i].Supplier.ID != w.id {
			t.Errorf("position %d: expected %s, got %s", i, w.id, got[i].Supplier.ID)
		}
		if math.Abs(got[i].Efficiency-w.efficiency) > 1e-12 || got[i].HasHistory != w.hasHistory {
			t.Errorf("%s: expected efficiency %v (history=%v), got %v (history=%v)",
				w.id, w.efficiency, w.hasHistory, got[i].Efficiency, got[i].HasHistory)
		}
	}
}

func TestSuggest_SortedAscending(t *testing.T) {
	suppliers := make([]models.Supplier, 0, 20)
	history := make([]models.EnrichedShipment, 0, 20)
	for i := 0; i < 20; i++ {
		id := string(rune('a' + i))
		suppliers = append(suppliers, models.Supplier{ID: id})
		history = append(history, enriched(id, id, 10, 1, float64((i*7)%20)))
	}

	got := Suggest(Target{DistanceKm: 123, WeightTonnes: 4.5}, history, suppliers, 20)
	for i := 1; i < len(got); i++ {
		if got[i-1].HypotheticalEmissionsKg > got[i].HypotheticalEmissionsKg {
			t.Fatalf("not sorted at %d: %v > %v", i, got[i-1].HypotheticalEmissionsKg, got[i].HypotheticalEmissionsKg)
		}
	}
}

func TestSuggest_ZeroDistanceKeepsSupplierOrder(t *testing.T) {
	suppliers := []models.Supplier{{ID: "S5"}, {ID: "S1"}, {ID: "S3"}, {ID: "S2"}, {ID: "S4"}}
	history := []models.EnrichedShipment{
		enriched("1", "S1", 100, 1, 1),
		enriched("2", "S5", 100, 1, 90),
	}

	got := Suggest(Target{DistanceKm: 0, WeightTonnes: 3}, history, suppliers, 3)
	want := []string{"S5", "S1", "S3"}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].Supplier.ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].Supplier.ID)
		}
		if got[i].HypotheticalEmissionsKg != 0 {
			t.Errorf("%s: expected zero emissions, got %v", id, got[i].HypotheticalEmissionsKg)
		}
	}
}

func TestSuggest_IgnoresTargetMode(t *testing.T) {
	suppliers := []models.Supplier{{ID: "S1"}, {ID: "S2"}}
	history := []models.EnrichedShipment{
		enriched("1", "S1", 10, 1, 0.2),
		enriched("2", "S2", 10, 1, 0.5),
	}

	road := Suggest(Target{DistanceKm: 10, WeightTonnes: 2, Mode: models.TransportModeRoad}, history, suppliers, 2)
	air := Suggest(Target{DistanceKm: 10, WeightTonnes: 2, Mode: models.TransportModeAir}, history, suppliers, 2)

	for i := range road {
		if road[i].Supplier.ID != air[i].Supplier.ID || road[i].HypotheticalEmissionsKg != air[i].HypotheticalEmissionsKg {
			t.Errorf("position %d differs by mode: %+v vs %+v", i, road[i], air[i])
		}
	}
}

func TestSuggest_TopKAndEmpty(t *testing.T) {
	suppliers := []models.Supplier{{ID: "S1"}, {ID: "S2"}, {ID: "S3"}}

	if got := Suggest(Target{DistanceKm: 1, WeightTonnes: 1}, nil, suppliers, 2); len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
	if got := Suggest(Target{DistanceKm: 1, WeightTonnes: 1}, nil, suppliers, 0); got == nil || len(got) != 0 {
		t.Errorf("expected empty result for k=0, got %v", got)
	}
	if got := Suggest(Target{DistanceKm: 1, WeightTonnes: 1}, nil, nil, 5); got == nil || len(got) != 0 {
		t.Errorf("expected empty result without suppliers, got %v", got)
	}
}

func TestTargetFrom(t *testing.T) {
	s := enriched("SH1", "S1", 42, 3, 7.8)
	s.Mode = models.TransportModeSea

	target := TargetFrom(s)
	if target.DistanceKm != 42 || target.WeightTonnes != 3 || target.Mode != models.TransportModeSea {
		t.Errorf("unexpected target: %+v", target)
	}
}
