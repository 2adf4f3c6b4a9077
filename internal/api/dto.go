package api

import (
	"github.com/mr1hm/go-carbon-tracker/internal/emissions"
	"github.com/mr1hm/go-carbon-tracker/internal/graph"
	"github.com/mr1hm/go-carbon-tracker/internal/models"
	"github.com/mr1hm/go-carbon-tracker/internal/recommend"
)

type summaryJSON struct {
	TotalSuppliers   int     `json:"total_suppliers"`
	TotalShipments   int     `json:"total_shipments"`
	TotalEmissionsKg float64 `json:"total_emissions_kg"`
}

type riskJSON struct {
	TotalEmissionsKg float64 `json:"total_emissions_kg"`
	Risk             float64 `json:"risk"`
}

type shipmentJSON struct {
	ID           string  `json:"shipment_id"`
	SupplierID   string  `json:"supplier_id"`
	OriginLat    float64 `json:"origin_lat"`
	OriginLon    float64 `json:"origin_lon"`
	DestLat      float64 `json:"dest_lat"`
	DestLon      float64 `json:"dest_lon"`
	DistanceKm   float64 `json:"distance_km"`
	WeightTonnes float64 `json:"weight_tonnes"`
	Mode         string  `json:"mode"`
	Factor       float64 `json:"ef"`
	EmissionsKg  float64 `json:"emissions_kg"`
}

type aggregateJSON struct {
	SupplierID        string  `json:"supplier_id"`
	TotalShipments    int     `json:"total_shipments"`
	TotalWeightTonnes float64 `json:"total_weight_t"`
	TotalEmissionsKg  float64 `json:"total_emissions_kg"`
	AvgDistanceKm     float64 `json:"avg_distance_km"`
}

type nodeJSON struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Name       string  `json:"name,omitempty"`
	Country    string  `json:"country,omitempty"`
	Known      *bool   `json:"known,omitempty"`
	ShipmentID string  `json:"shipment_id,omitempty"`
}

type edgeJSON struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	ShipmentID   string  `json:"shipment_id"`
	Mode         string  `json:"mode"`
	DistanceKm   float64 `json:"distance_km"`
	WeightTonnes float64 `json:"weight_tonnes"`
	EmissionsKg  float64 `json:"emissions_kg"`
}

type graphJSON struct {
	Nodes []nodeJSON `json:"nodes"`
	Edges []edgeJSON `json:"edges"`
}

type alternativeJSON struct {
	SupplierID              string  `json:"supplier_id"`
	Name                    string  `json:"name"`
	Country                 string  `json:"country"`
	AvgEF                   float64 `json:"avg_ef"`
	HasHistory              bool    `json:"has_history"`
	HypotheticalEmissionsKg float64 `json:"hyp_emissions_kg"`
}

type alternativesResponse struct {
	Shipment     shipmentJSON      `json:"shipment"`
	Alternatives []alternativeJSON `json:"alternatives"`
}

func toSummaryJSON(s emissions.Summary) summaryJSON {
	return summaryJSON{
		TotalSuppliers:   s.TotalSuppliers,
		TotalShipments:   s.TotalShipments,
		TotalEmissionsKg: s.TotalEmissionsKg,
	}
}

func toRiskJSON(scores map[string]graph.RiskScore) map[string]riskJSON {
	out := make(map[string]riskJSON, len(scores))
	for id, s := range scores {
		out[id] = riskJSON{TotalEmissionsKg: s.TotalEmissionsKg, Risk: s.Risk}
	}
	return out
}

func toShipmentJSON(s models.EnrichedShipment) shipmentJSON {
	return shipmentJSON{
		ID:           s.ID,
		SupplierID:   s.SupplierID,
		OriginLat:    s.OriginLat,
		OriginLon:    s.OriginLon,
		DestLat:      s.DestLat,
		DestLon:      s.DestLon,
		DistanceKm:   s.DistanceKm,
		WeightTonnes: s.WeightTonnes,
		Mode:         string(s.Mode),
		Factor:       s.Factor,
		EmissionsKg:  s.EmissionsKg,
	}
}

func toShipmentsJSON(enriched []models.EnrichedShipment) []shipmentJSON {
	out := make([]shipmentJSON, 0, len(enriched))
	for _, e := range enriched {
		out = append(out, toShipmentJSON(e))
	}
	return out
}

func toAggregatesJSON(aggs []models.SupplierAggregate) []aggregateJSON {
	out := make([]aggregateJSON, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, aggregateJSON{
			SupplierID:        a.SupplierID,
			TotalShipments:    a.TotalShipments,
			TotalWeightTonnes: a.TotalWeightTonnes,
			TotalEmissionsKg:  a.TotalEmissionsKg,
			AvgDistanceKm:     a.AvgDistanceKm,
		})
	}
	return out
}

func toGraphJSON(g *graph.Graph) graphJSON {
	nodes := g.Nodes()
	out := graphJSON{
		Nodes: make([]nodeJSON, 0, len(nodes)),
		Edges: make([]edgeJSON, 0, g.EdgeCount()),
	}

	for _, n := range nodes {
		loc := n.Location()
		nj := nodeJSON{
			ID:   n.ID(),
			Kind: n.Kind().String(),
			Lat:  loc.Latitude,
			Lon:  loc.Longitude,
		}
		switch v := n.(type) {
		case *graph.SupplierNode:
			known := v.Known
			nj.Name = v.Name
			nj.Country = v.Country
			nj.Known = &known
		case *graph.DestinationNode:
			nj.ShipmentID = v.ShipmentID
		}
		out.Nodes = append(out.Nodes, nj)
	}

	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edgeJSON{
			Source:       e.From,
			Target:       e.To,
			ShipmentID:   e.ShipmentID,
			Mode:         string(e.Mode),
			DistanceKm:   e.DistanceKm,
			WeightTonnes: e.WeightTonnes,
			EmissionsKg:  e.EmissionsKg,
		})
	}
	return out
}

func toAlternativesJSON(alts []recommend.Alternative) []alternativeJSON {
	out := make([]alternativeJSON, 0, len(alts))
	for _, a := range alts {
		out = append(out, alternativeJSON{
			SupplierID:              a.Supplier.ID,
			Name:                    a.Supplier.Name,
			Country:                 a.Supplier.Country,
			AvgEF:                   a.Efficiency,
			HasHistory:              a.HasHistory,
			HypotheticalEmissionsKg: a.HypotheticalEmissionsKg,
		})
	}
	return out
}
