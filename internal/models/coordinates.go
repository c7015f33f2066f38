package models

// Coordinates represents a geographical point defined by its longitude and latitude.
// Values are carried through as parsed or resolved; no range validation is applied.
type Coordinates struct {
	Longitude float64 // Longitude of the geographical point.
	Latitude  float64 // Latitude of the geographical point.
}
