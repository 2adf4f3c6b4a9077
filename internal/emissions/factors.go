package emissions

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mr1hm/go-carbon-tracker/internal/models"
)

// FallbackFactor is used for any transport mode missing from a FactorTable.
const FallbackFactor = 0.05

// FactorTable maps a transport mode to kg CO2 per tonne-km.
type FactorTable map[models.TransportMode]float64

// DefaultFactors returns a fresh copy of the built-in example factors.
// These are illustrative values, not audited ones.
func DefaultFactors() FactorTable {
	return FactorTable{
		models.TransportModeRoad: 0.062,
		models.TransportModeRail: 0.021,
		models.TransportModeSea:  0.010,
		models.TransportModeAir:  0.600,
	}
}

func (t FactorTable) Factor(mode models.TransportMode) float64 {
	if f, ok := t[mode]; ok {
		return f
	}
	return FallbackFactor
}

func (t FactorTable) Validate() error {
	for mode, f := range t {
		if mode == "" {
			return fmt.Errorf("empty transport mode in factor table")
		}
		if !(f > 0) || math.IsInf(f, 0) {
			return fmt.Errorf("invalid factor for mode %s: %v", mode, f)
		}
	}
	return nil
}

func (t FactorTable) clone() FactorTable {
	out := make(FactorTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// ParseFactors applies overrides of the form "road=0.05,air=0.5" on top of
// the default table. An empty string yields the defaults.
func ParseFactors(s string) (FactorTable, error) {
	table := DefaultFactors()
	s = strings.TrimSpace(s)
	if s == "" {
		return table, nil
	}

	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		mode, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid factor override %q: expected mode=value", pair)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid factor override %q: %w", pair, err)
		}
		table[models.ParseTransportMode(mode)] = f
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
