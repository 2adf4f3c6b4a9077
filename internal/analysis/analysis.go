package analysis

import (
	"errors"
	"fmt"

	"github.com/mr1hm/go-carbon-tracker/internal/emissions"
	"github.com/mr1hm/go-carbon-tracker/internal/graph"
	"github.com/mr1hm/go-carbon-tracker/internal/models"
	"github.com/mr1hm/go-carbon-tracker/internal/recommend"
)

var ErrShipmentNotFound = errors.New("shipment not found")

// Report holds every derived table for one analysis run. It is built from
// immutable snapshots and is safe for concurrent reads.
type Report struct {
	Suppliers  []models.Supplier
	Enriched   []models.EnrichedShipment
	Aggregates []models.SupplierAggregate
	Graph      *graph.Graph
	Risk       map[string]graph.RiskScore
	Summary    emissions.Summary

	shipmentIndex map[string]int
}

func Run(suppliers []models.Supplier, shipments []models.Shipment, factors emissions.FactorTable) *Report {
	enriched := emissions.Compute(shipments, factors)
	g := graph.Build(suppliers, enriched)

	r := &Report{
		Suppliers:     suppliers,
		Enriched:      enriched,
		Aggregates:    emissions.Aggregate(enriched),
		Graph:         g,
		Risk:          graph.RiskScores(g),
		Summary:       emissions.Summarize(suppliers, enriched),
		shipmentIndex: make(map[string]int, len(enriched)),
	}
	for i, e := range enriched {
		if _, ok := r.shipmentIndex[e.ID]; !ok {
			r.shipmentIndex[e.ID] = i
		}
	}
	return r
}

func (r *Report) Shipment(id string) (models.EnrichedShipment, bool) {
	i, ok := r.shipmentIndex[id]
	if !ok {
		return models.EnrichedShipment{}, false
	}
	return r.Enriched[i], true
}

// Alternatives ranks suppliers for the shipment with the given id.
func (r *Report) Alternatives(shipmentID string, topK int) ([]recommend.Alternative, error) {
	s, ok := r.Shipment(shipmentID)
	if !ok {
		return nil, fmt.Errorf("error finding shipment %s: %w", shipmentID, ErrShipmentNotFound)
	}
	return recommend.Suggest(recommend.TargetFrom(s), r.Enriched, r.Suppliers, topK), nil
}

func (r *Report) TopEmitters(n int) []models.SupplierAggregate {
	return emissions.TopEmitters(r.Aggregates, n)
}
