package models

import "fmt"

// Coordinates represents a geographical point in WGS-84 degrees.
type Coordinates struct {
	Latitude  float64 // Latitude of the geographical point.
	Longitude float64 // Longitude of the geographical point.
}

// Valid reports whether both components fall within the WGS-84 range.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Key returns a stable cache key for the point. Six decimal places are
// roughly 11cm of precision, well below geocoder accuracy.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}
