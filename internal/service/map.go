package service

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/serendigo/serendigo-backend-go/internal/detour"
	"github.com/serendigo/serendigo-backend-go/internal/spatial"
)

const (
	// MapZoom is the initial zoom of the detour map.
	MapZoom = 14
	// mapMargin pads the bbox so edge markers stay visible.
	mapMargin = 150.0
	// circleVertices is the resolution of the accuracy polygon.
	circleVertices = 32
)

// Map renders the session as a GeoJSON FeatureCollection: one point per
// spot, plus the user's position and accuracy circle once known.
func (s *SessionService) Map(id string) (*geojson.FeatureCollection, error) {
	ds, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	v := ds.view()
	return BuildMap(v.State, v.Center, v.Position), nil
}

// BuildMap assembles the map for a state centered at center.
func BuildMap(st detour.State, center detour.Coordinate, pos *Position) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	points := []spatial.Point{{Lat: center.Lat, Lon: center.Lng}}

	for _, sp := range st.Spots {
		f := geojson.NewFeature(orb.Point{sp.Lng, sp.Lat})
		f.ID = sp.ID
		f.Properties["kind"] = "spot"
		f.Properties["id"] = sp.ID
		f.Properties["name"] = sp.Name
		f.Properties["category"] = string(sp.Category)
		f.Properties["color"] = detour.ColorName(sp.Category)
		f.Properties["icon"] = detour.Icon(sp.Category)
		f.Properties["popup"] = detour.PopupText(sp, st.Config.Mode)
		fc.Append(f)
		points = append(points, spatial.Point{Lat: sp.Lat, Lon: sp.Lng})
	}

	if pos != nil {
		user := geojson.NewFeature(orb.Point{pos.Lng, pos.Lat})
		user.Properties["kind"] = "user"
		user.Properties["accuracy"] = pos.Accuracy
		fc.Append(user)

		ring := orb.Ring{}
		for _, v := range spatial.CircleRing(pos.Lat, pos.Lng, pos.Accuracy, circleVertices) {
			ring = append(ring, orb.Point{v[0], v[1]})
		}
		circle := geojson.NewFeature(orb.Polygon{ring})
		circle.Properties["kind"] = "accuracy"
		circle.Properties["radius_m"] = pos.Accuracy
		fc.Append(circle)

		points = append(points, spatial.Point{Lat: pos.Lat, Lon: pos.Lng})
	}

	if b, ok := spatial.BoundingBox(points, mapMargin); ok {
		fc.BBox = geojson.NewBBox(orb.Bound{
			Min: orb.Point{b.MinLon, b.MinLat},
			Max: orb.Point{b.MaxLon, b.MaxLat},
		})
	}
	fc.ExtraMembers = geojson.Properties{
		"center": []float64{center.Lng, center.Lat},
		"zoom":   MapZoom,
	}
	return fc
}
