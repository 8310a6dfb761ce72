package detour

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNormalize_DistanceKmConvertsToMeters(t *testing.T) {
	for _, km := range []float64{0, 0.35, 0.4449, 1.2345, 12.5} {
		got := Normalize(map[string]any{"distance_km": km})
		want := int(math.Round(km * 1000))
		if got.DistanceM != want {
			t.Errorf("distance_km=%v: got %d, want %d", km, got.DistanceM, want)
		}
	}
}

func TestNormalize_DistanceMetersWins(t *testing.T) {
	got := Normalize(map[string]any{"distance_m": 420.0, "distance_km": 9.0, "distance": 7.0})
	if got.DistanceM != 420 {
		t.Errorf("got %d, want 420", got.DistanceM)
	}
}

func TestNormalize_GenericDistanceCoerced(t *testing.T) {
	got := Normalize(map[string]any{"distance": "275"})
	if got.DistanceM != 275 {
		t.Errorf("got %d, want 275", got.DistanceM)
	}

	got = Normalize(map[string]any{"distance": "far"})
	if got.DistanceM != 0 {
		t.Errorf("non-numeric distance: got %d, want 0", got.DistanceM)
	}
}

func TestNormalize_StringDistanceMIsNotNumeric(t *testing.T) {
	got := Normalize(map[string]any{"distance_m": "300", "distance_km": 0.5})
	if got.DistanceM != 500 {
		t.Errorf("got %d, want 500 from distance_km", got.DistanceM)
	}
}

func TestNormalize_CategoryCollapsesToLocal(t *testing.T) {
	cases := map[string]any{
		"food":    "food",
		"Gourmet": "Gourmet",
		"empty":   "",
		"number":  3.0,
		"nil":     nil,
	}
	for name, v := range cases {
		got := Normalize(map[string]any{"category": v})
		if got.Category != CategoryLocal {
			t.Errorf("%s: got %q, want local", name, got.Category)
		}
	}
}

func TestNormalize_CategoryAliases(t *testing.T) {
	if got := Normalize(map[string]any{"category": "gourmet"}); got.Category != CategoryGourmet {
		t.Errorf("category gourmet: got %q", got.Category)
	}
	if got := Normalize(map[string]any{"cat": "event"}); got.Category != CategoryEvent {
		t.Errorf("cat event: got %q", got.Category)
	}
}

func TestNormalize_EmptyInputIsTotal(t *testing.T) {
	for _, raw := range []map[string]any{nil, {}, {"id": nil, "lat": "north", "eta": []any{1}}} {
		got := Normalize(raw)
		if got.ID != "" || got.Name != "" || got.Genre != "" || got.Desc != "" {
			t.Errorf("expected empty strings, got %+v", got)
		}
		if got.Lat != 0 || got.Lng != 0 || got.EtaMin != 0 || got.DistanceM != 0 {
			t.Errorf("expected zero numbers, got %+v", got)
		}
		if got.Category != CategoryLocal {
			t.Errorf("expected local category, got %q", got.Category)
		}
		if got.PhotoURL != PlaceholderPhoto {
			t.Errorf("expected placeholder photo, got %q", got.PhotoURL)
		}
	}
}

func TestNormalize_FieldAlternatives(t *testing.T) {
	got := Normalize(map[string]any{
		"spot_id":     42.0,
		"title":       "足湯",
		"type":        "温泉",
		"description": "無料の足湯",
		"latitude":    "35.1",
		"longitude":   139.2,
		"eta":         7.0,
	})
	want := Spot{
		ID:        "42",
		Name:      "足湯",
		Genre:     "温泉",
		Desc:      "無料の足湯",
		Lat:       35.1,
		Lng:       139.2,
		EtaMin:    7,
		DistanceM: 0,
		Category:  CategoryLocal,
		PhotoURL:  PlaceholderPhoto,
	}
	if got != want {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestNormalize_EtaTextExtraction(t *testing.T) {
	got := Normalize(map[string]any{"id": "s1", "eta_text": "徒歩約9分・350m"})
	if got.EtaMin != 9 {
		t.Errorf("eta: got %d, want 9", got.EtaMin)
	}
	if got.DistanceM != 350 {
		t.Errorf("distance: got %d, want 350", got.DistanceM)
	}
}

func TestNormalize_EtaTextOnlyWhenStructuredMissing(t *testing.T) {
	got := Normalize(map[string]any{
		"eta_text":     "徒歩約9分・350m",
		"duration_min": 4.0,
		"distance_km":  1.1,
	})
	if got.EtaMin != 4 {
		t.Errorf("eta: got %d, want 4", got.EtaMin)
	}
	if got.DistanceM != 1100 {
		t.Errorf("distance: got %d, want 1100", got.DistanceM)
	}
}

func TestNormalize_NegativeNumbersClampToZero(t *testing.T) {
	got := Normalize(map[string]any{"distance_m": -20.0, "eta_min": -3.0})
	if got.DistanceM != 0 || got.EtaMin != 0 {
		t.Errorf("got distance %d eta %d, want 0 0", got.DistanceM, got.EtaMin)
	}
}

func TestNormalize_JSONNumbers(t *testing.T) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(`{"id": 7, "distance_m": 812.6, "lat": 35.5}`), &raw); err != nil {
		t.Fatal(err)
	}
	got := Normalize(raw)
	if got.ID != "7" || got.DistanceM != 813 || got.Lat != 35.5 {
		t.Errorf("unexpected spot %+v", got)
	}
}

func TestNormalizeAll_KeepsOrder(t *testing.T) {
	spots := NormalizeAll([]map[string]any{{"id": "b"}, {"id": "a"}, {"id": "c"}})
	if len(spots) != 3 || spots[0].ID != "b" || spots[1].ID != "a" || spots[2].ID != "c" {
		t.Errorf("unexpected order %+v", spots)
	}
}

func TestFallbackSpots(t *testing.T) {
	spots := FallbackSpots()
	if len(spots) != 3 {
		t.Fatalf("expected 3 fallback spots, got %d", len(spots))
	}
	wantDist := []int{350, 650, 450}
	for i, s := range spots {
		if s.ID == "" || s.Name == "" || s.Desc == "" {
			t.Errorf("fallback %d not fully populated: %+v", i, s)
		}
		if s.DistanceM != wantDist[i] {
			t.Errorf("fallback %d distance: got %d, want %d", i, s.DistanceM, wantDist[i])
		}
	}

	spots[0].Name = "changed"
	if FallbackSpots()[0].Name == "changed" {
		t.Error("FallbackSpots must return a fresh copy")
	}
}
