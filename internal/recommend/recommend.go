package recommend

import (
	"sort"

	"github.com/mr1hm/go-carbon-tracker/internal/models"
)

// FallbackEfficiency is used for suppliers with no usable shipment history.
const FallbackEfficiency = 0.05

// Target describes the shipment to re-price. Mode is carried for display
// only; supplier efficiency is mode-agnostic.
type Target struct {
	DistanceKm   float64
	WeightTonnes float64
	Mode         models.TransportMode
}

func TargetFrom(s models.EnrichedShipment) Target {
	return Target{
		DistanceKm:   s.DistanceKm,
		WeightTonnes: s.WeightTonnes,
		Mode:         s.Mode,
	}
}

type Alternative struct {
	Supplier models.Supplier
	// Efficiency is the supplier's historical kg CO2 per tonne-km.
	Efficiency float64
	// HasHistory reports whether the supplier appears in the shipment history.
	HasHistory              bool
	HypotheticalEmissionsKg float64
}

// Efficiencies returns each supplier's historical emissions per tonne-km,
// counting only shipments with positive distance x weight. Suppliers whose
// history has no such shipment get FallbackEfficiency.
func Efficiencies(history []models.EnrichedShipment) map[string]float64 {
	type acc struct {
		emissions float64
		tonneKm   float64
	}

	sums := make(map[string]*acc)
	for _, s := range history {
		a, ok := sums[s.SupplierID]
		if !ok {
			a = &acc{}
			sums[s.SupplierID] = a
		}
		if tkm := s.TonneKm(); tkm > 0 {
			a.emissions += s.EmissionsKg
			a.tonneKm += tkm
		}
	}

	out := make(map[string]float64, len(sums))
	for id, a := range sums {
		if a.tonneKm > 0 {
			out[id] = a.emissions / a.tonneKm
		} else {
			out[id] = FallbackEfficiency
		}
	}
	return out
}

// Suggest ranks every supplier in the supplier table by the emissions the
// target shipment would have produced at that supplier's historical
// efficiency, lowest first, and returns the top k. Ties keep supplier-table
// order.
func Suggest(target Target, history []models.EnrichedShipment, suppliers []models.Supplier, k int) []Alternative {
	if k <= 0 || len(suppliers) == 0 {
		return []Alternative{}
	}

	eff := Efficiencies(history)
	work := target.DistanceKm * target.WeightTonnes

	alts := make([]Alternative, 0, len(suppliers))
	for _, s := range suppliers {
		e, ok := eff[s.ID]
		if !ok {
			e = FallbackEfficiency
		}
		alts = append(alts, Alternative{
			Supplier:                s,
			Efficiency:              e,
			HasHistory:              ok,
			HypotheticalEmissionsKg: work * e,
		})
	}

	sort.SliceStable(alts, func(i, j int) bool {
		return alts[i].HypotheticalEmissionsKg < alts[j].HypotheticalEmissionsKg
	})

	if len(alts) > k {
		alts = alts[:k]
	}
	return alts
}
