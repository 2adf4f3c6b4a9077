package api

import (
	"github.com/mr1hm/go-carbon-tracker/internal/graph"
	"github.com/mr1hm/go-carbon-tracker/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toGeoJSON(suppliers []models.Supplier, risk map[string]graph.RiskScore) FeatureCollection {
	features := make([]Feature, 0, len(suppliers))

	for _, s := range suppliers {
		score := risk[s.ID]
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{s.Longitude, s.Latitude},
			},
			Properties: map[string]any{
				"supplier_id":        s.ID,
				"name":               s.Name,
				"country":            s.Country,
				"avg_lead_days":      s.AvgLeadDays,
				"total_emissions_kg": score.TotalEmissionsKg,
				"risk":               score.Risk,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
