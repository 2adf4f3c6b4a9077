package graph

import "math"

// RiskNormalizationKg is the outgoing emissions total at which risk saturates at 1.
// It is a heuristic scale, not a calibrated threshold.
const RiskNormalizationKg = 10000.0

type RiskScore struct {
	TotalEmissionsKg float64
	Risk             float64
}

// RiskScores sums outgoing edge emissions for every supplier node.
// Suppliers with no edges score zero.
func RiskScores(g *Graph) map[string]RiskScore {
	scores := make(map[string]RiskScore)
	if g == nil {
		return scores
	}

	for _, k := range g.order {
		if k.kind != NodeKindSupplier {
			continue
		}
		var total float64
		for _, i := range g.out[k.id] {
			total += g.edges[i].EmissionsKg
		}
		scores[k.id] = RiskScore{
			TotalEmissionsKg: total,
			Risk:             normalizeRisk(total),
		}
	}
	return scores
}

func normalizeRisk(totalKg float64) float64 {
	return math.Max(0, math.Min(1.0, totalKg/RiskNormalizationKg))
}
