package emissions

import "github.com/mr1hm/go-carbon-tracker/internal/models"

// Compute enriches each shipment with its resolved factor and emissions
// (distance_km * weight_tonnes * factor). A nil table means DefaultFactors.
// Distance and weight are not validated: zero or negative inputs produce
// zero or negative emissions.
func Compute(shipments []models.Shipment, factors FactorTable) []models.EnrichedShipment {
	if factors == nil {
		factors = DefaultFactors()
	}

	out := make([]models.EnrichedShipment, 0, len(shipments))
	for _, s := range shipments {
		out = append(out, enrich(s, factors))
	}
	return out
}

// Recompute re-applies the factor table to already enriched shipments,
// overwriting the previous factor and emissions.
func Recompute(enriched []models.EnrichedShipment, factors FactorTable) []models.EnrichedShipment {
	if factors == nil {
		factors = DefaultFactors()
	}

	out := make([]models.EnrichedShipment, 0, len(enriched))
	for _, e := range enriched {
		out = append(out, enrich(e.Shipment, factors))
	}
	return out
}

func enrich(s models.Shipment, factors FactorTable) models.EnrichedShipment {
	f := factors.Factor(s.Mode)
	return models.EnrichedShipment{
		Shipment:    s,
		Factor:      f,
		EmissionsKg: s.DistanceKm * s.WeightTonnes * f,
	}
}
