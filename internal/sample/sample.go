package sample

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/mr1hm/go-carbon-tracker/internal/models"
)

var (
	// Suppliers are scattered around central India.
	baseLat, baseLon = 20.5, 78.9

	countries = []string{"India", "China", "Germany", "US", "Brazil"}

	modeWeights = []struct {
		mode   models.TransportMode
		weight int
	}{
		{models.TransportModeRoad, 50},
		{models.TransportModeRail, 20},
		{models.TransportModeSea, 20},
		{models.TransportModeAir, 10},
	}
)

type Options struct {
	Seed      uint64
	Suppliers int
	Shipments int
}

func DefaultOptions() Options {
	return Options{
		Seed:      42,
		Suppliers: 12,
		Shipments: 80,
	}
}

// Generate produces a reproducible synthetic dataset: the same options always
// yield the same suppliers and shipments.
func Generate(opts Options) ([]models.Supplier, []models.Shipment, error) {
	if opts.Suppliers < 0 || opts.Shipments < 0 {
		return nil, nil, fmt.Errorf("invalid sample size: suppliers=%d shipments=%d", opts.Suppliers, opts.Shipments)
	}
	if opts.Suppliers == 0 && opts.Shipments > 0 {
		return nil, nil, fmt.Errorf("cannot generate %d shipments without suppliers", opts.Shipments)
	}

	r := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	suppliers := make([]models.Supplier, 0, opts.Suppliers)
	for i := 0; i < opts.Suppliers; i++ {
		suppliers = append(suppliers, models.Supplier{
			ID:          fmt.Sprintf("S%03d", i+1),
			Name:        "Supplier " + supplierLetter(i),
			Country:     countries[r.IntN(len(countries))],
			Latitude:    baseLat + uniform(r, -10, 10),
			Longitude:   baseLon + uniform(r, -25, 25),
			AvgLeadDays: 2 + r.IntN(44),
		})
	}

	shipments := make([]models.Shipment, 0, opts.Shipments)
	for j := 0; j < opts.Shipments; j++ {
		s := suppliers[r.IntN(len(suppliers))]
		destLat := s.Latitude + uniform(r, -3, 3)
		destLon := s.Longitude + uniform(r, -3, 3)

		shipments = append(shipments, models.Shipment{
			ID:           fmt.Sprintf("SH%04d", j+1),
			SupplierID:   s.ID,
			OriginLat:    s.Latitude,
			OriginLon:    s.Longitude,
			DestLat:      destLat,
			DestLon:      destLon,
			DistanceKm:   round2(Haversine(s.Latitude, s.Longitude, destLat, destLon)),
			WeightTonnes: round2(uniform(r, 0.1, 20.0)),
			Mode:         pickMode(r),
		})
	}

	return suppliers, shipments, nil
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func pickMode(r *rand.Rand) models.TransportMode {
	total := 0
	for _, mw := range modeWeights {
		total += mw.weight
	}
	n := r.IntN(total)
	for _, mw := range modeWeights {
		if n < mw.weight {
			return mw.mode
		}
		n -= mw.weight
	}
	return modeWeights[len(modeWeights)-1].mode
}

// supplierLetter yields A..Z, then AA, AB, ... for larger datasets.
func supplierLetter(i int) string {
	s := ""
	for i >= 0 {
		s = string(rune('A'+i%26)) + s
		i = i/26 - 1
	}
	return s
}
