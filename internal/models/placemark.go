package models

// Attribute is a single auxiliary key/value pair preserved on a placemark.
type Attribute struct {
	Key   string // Key is the originating column name.
	Value string // Value is the non-empty raw cell value.
}

// Placemark is one named point-of-interest entry destined for the output
// document. Attributes keep header order and never contain the columns
// already consumed as name, address, latitude or longitude.
type Placemark struct {
	Name        string      // Name shown for the marker.
	Coordinates Coordinates // Resolved or projected position.
	Description string      // Free-text description, possibly empty.
	Attributes  []Attribute // Remaining informational columns, in header order.
}
