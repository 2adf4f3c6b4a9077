package models

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

type Supplier struct {
	ID          string // e.g. "S001"
	Name        string
	Country     string
	Latitude    float64
	Longitude   float64
	AvgLeadDays int
}

func (s *Supplier) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
	}
}
