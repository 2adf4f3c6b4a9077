package models

import "strings"

type TransportMode string

const (
	TransportModeRoad TransportMode = "road"
	TransportModeRail TransportMode = "rail"
	TransportModeSea  TransportMode = "sea"
	TransportModeAir  TransportMode = "air"
)

// KnownModes lists the modes with a built-in emission factor. Shipments may
// carry any other mode string; those resolve to the fallback factor.
var KnownModes = []TransportMode{
	TransportModeRoad,
	TransportModeRail,
	TransportModeSea,
	TransportModeAir,
}

func ParseTransportMode(s string) TransportMode {
	return TransportMode(strings.ToLower(strings.TrimSpace(s)))
}

func (m TransportMode) Known() bool {
	for _, k := range KnownModes {
		if m == k {
			return true
		}
	}
	return false
}

type Shipment struct {
	ID           string // e.g. "SH0001"
	SupplierID   string
	OriginLat    float64
	OriginLon    float64
	DestLat      float64
	DestLon      float64
	DistanceKm   float64
	WeightTonnes float64
	Mode         TransportMode
}

func (s *Shipment) Destination() Coordinates {
	return Coordinates{Latitude: s.DestLat, Longitude: s.DestLon}
}

// TonneKm is the transport work of the shipment (distance x weight).
func (s *Shipment) TonneKm() float64 {
	return s.DistanceKm * s.WeightTonnes
}

// EnrichedShipment is a shipment with its resolved emission factor
// (kg CO2 per tonne-km) and computed emissions in kg CO2.
type EnrichedShipment struct {
	Shipment
	Factor      float64
	EmissionsKg float64
}

type SupplierAggregate struct {
	SupplierID        string
	TotalShipments    int
	TotalWeightTonnes float64
	TotalEmissionsKg  float64
	AvgDistanceKm     float64
}
