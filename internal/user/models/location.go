package models

import (
	"math"

	dErrors "bloodlink/pkg/domain-errors"
)

const earthRadiusKm = 6371.0

// MaxSearchRadiusKm bounds nearby donor searches.
const MaxSearchRadiusKm = 500.0

// Location is a WGS84 point in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return dErrors.New(dErrors.CodeValidation, "latitude must be between -90 and 90")
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return dErrors.New(dErrors.CodeValidation, "longitude must be between -180 and 180")
	}
	return nil
}

// DistanceKm is the great-circle distance between a and b using the
// haversine formula. The Postgres store evaluates the same expression in SQL.
func DistanceKm(a, b Location) float64 {
	lat1, lat2 := radians(a.Latitude), radians(b.Latitude)
	dLat := lat2 - lat1
	dLon := radians(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
