package spatial

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Point represents a geographic point
type Point struct {
	Lat float64
	Lon float64
}

// Bounds is a lat/lng rectangle in degrees.
type Bounds struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

var validLatRange = r1.Interval{Lo: -math.Pi / 2, Hi: math.Pi / 2}

// ValidCoordinate reports whether lat/lon are finite degrees within the
// valid latitude and longitude ranges.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// BoundingBox returns the smallest rectangle containing all points, padded
// by margin meters on every side so markers are not drawn on the edge.
// ok is false for an empty input.
func BoundingBox(points []Point, margin float64) (b Bounds, ok bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}

	rb := s2.NewRectBounder()
	for _, p := range points {
		rb.AddPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon)))
	}
	rect := rb.RectBound()
	if margin > 0 {
		rect = expandByDistance(rect, s1.Angle(margin/EarthRadiusMeters))
	}

	return Bounds{
		MinLat: rect.Lo().Lat.Degrees(),
		MinLon: rect.Lo().Lng.Degrees(),
		MaxLat: rect.Hi().Lat.Degrees(),
		MaxLon: rect.Hi().Lng.Degrees(),
	}, true
}

// expandByDistance pads rect by d on every side. The longitude margin is
// scaled by the latitude farthest from the equator, and a rect that reaches
// a pole spans every longitude.
func expandByDistance(rect s2.Rect, d s1.Angle) s2.Rect {
	lat := rect.Lat.Expanded(d.Radians()).Intersection(validLatRange)
	edge := math.Max(math.Abs(lat.Lo), math.Abs(lat.Hi))

	lng := s1.FullInterval()
	if c := math.Cos(edge); c > 1e-9 {
		lng = rect.Lng.Expanded(d.Radians() / c)
	}
	return s2.Rect{Lat: lat, Lng: lng}
}
