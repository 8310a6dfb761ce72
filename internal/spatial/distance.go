package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters

	// MinAccuracyRadius and MaxAccuracyRadius bound the circle drawn around
	// the user's position.
	MinAccuracyRadius = 20.0
	MaxAccuracyRadius = 200.0
)

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// DestinationPoint calculates the destination point given a start point, bearing, and distance
// bearing: degrees (0-360), distance: meters
func DestinationPoint(lat, lon, bearing, distance float64) (float64, float64) {
	p := s2.LatLngFromDegrees(lat, lon)
	bearingRad := bearing * math.Pi / 180
	angularDistance := distance / EarthRadiusMeters

	latRad := p.Lat.Radians()
	lonRad := p.Lng.Radians()

	lat2 := math.Asin(math.Sin(latRad)*math.Cos(angularDistance) +
		math.Cos(latRad)*math.Sin(angularDistance)*math.Cos(bearingRad))

	lon2 := lonRad + math.Atan2(
		math.Sin(bearingRad)*math.Sin(angularDistance)*math.Cos(latRad),
		math.Cos(angularDistance)-math.Sin(latRad)*math.Sin(lat2))

	return lat2 * 180 / math.Pi, lon2 * 180 / math.Pi
}

// AccuracyRadius clamps a reported GPS accuracy to the displayed circle
// radius. Missing or invalid readings get the minimum.
func AccuracyRadius(accuracy float64) float64 {
	if math.IsNaN(accuracy) || accuracy < MinAccuracyRadius {
		return MinAccuracyRadius
	}
	if accuracy > MaxAccuracyRadius {
		return MaxAccuracyRadius
	}
	return accuracy
}

// CircleRing approximates a circle of radius meters around a point with n
// vertices. The ring is closed (first vertex repeated at the end) and each
// vertex is returned as [lng, lat].
func CircleRing(lat, lon, radius float64, n int) [][2]float64 {
	if n < 3 {
		n = 3
	}
	ring := make([][2]float64, 0, n+1)
	for i := 0; i < n; i++ {
		la, lo := DestinationPoint(lat, lon, float64(i)*360/float64(n), radius)
		ring = append(ring, [2]float64{lo, la})
	}
	return append(ring, ring[0])
}
