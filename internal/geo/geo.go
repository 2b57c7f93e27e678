// Package geo holds the great-circle distance used by the radius filter.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceKm returns the haversine distance between a and b.
func DistanceKm(a, b Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Within reports whether b lies inside the circle of radiusKm around center.
// The boundary is inclusive.
func Within(center, b Point, radiusKm float64) (float64, bool) {
	d := DistanceKm(center, b)
	return d, d <= radiusKm
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
