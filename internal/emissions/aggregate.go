package emissions

import (
	"sort"

	"github.com/mr1hm/go-carbon-tracker/internal/models"
)

type Summary struct {
	TotalSuppliers   int
	TotalShipments   int
	TotalEmissionsKg float64
}

// Aggregate groups enriched shipments by supplier id. Only suppliers that
// appear in the shipments get a row; rows are ordered by supplier id.
func Aggregate(enriched []models.EnrichedShipment) []models.SupplierAggregate {
	type acc struct {
		agg         models.SupplierAggregate
		distanceSum float64
	}

	groups := make(map[string]*acc)
	for _, e := range enriched {
		a, ok := groups[e.SupplierID]
		if !ok {
			a = &acc{agg: models.SupplierAggregate{SupplierID: e.SupplierID}}
			groups[e.SupplierID] = a
		}
		a.agg.TotalShipments++
		a.agg.TotalWeightTonnes += e.WeightTonnes
		a.agg.TotalEmissionsKg += e.EmissionsKg
		a.distanceSum += e.DistanceKm
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.SupplierAggregate, 0, len(ids))
	for _, id := range ids {
		a := groups[id]
		a.agg.AvgDistanceKm = a.distanceSum / float64(a.agg.TotalShipments)
		out = append(out, a.agg)
	}
	return out
}

// TopEmitters returns up to n aggregates sorted by total emissions, highest first.
// Ties are broken by supplier id.
func TopEmitters(aggregates []models.SupplierAggregate, n int) []models.SupplierAggregate {
	if n <= 0 {
		return []models.SupplierAggregate{}
	}

	sorted := make([]models.SupplierAggregate, len(aggregates))
	copy(sorted, aggregates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalEmissionsKg != sorted[j].TotalEmissionsKg {
			return sorted[i].TotalEmissionsKg > sorted[j].TotalEmissionsKg
		}
		return sorted[i].SupplierID < sorted[j].SupplierID
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func Summarize(suppliers []models.Supplier, enriched []models.EnrichedShipment) Summary {
	s := Summary{
		TotalSuppliers: len(suppliers),
		TotalShipments: len(enriched),
	}
	for _, e := range enriched {
		s.TotalEmissionsKg += e.EmissionsKg
	}
	return s
}
