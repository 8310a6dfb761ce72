package detour

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	etaMinutesPattern = regexp.MustCompile(`(\d+)\s*分`)
	etaMetersPattern  = regexp.MustCompile(`(\d+)\s*m`)
)

// Normalize converts one upstream record of unknown shape into a Spot.
// It never fails: missing or malformed fields fall back to defaults.
func Normalize(raw map[string]any) Spot {
	if raw == nil {
		raw = map[string]any{}
	}

	return Spot{
		ID:        stringField(raw, "id", "spot_id"),
		Name:      stringField(raw, "name", "title"),
		Genre:     stringField(raw, "genre", "type"),
		Desc:      stringField(raw, "desc", "description"),
		Lat:       numberField(raw, "lat", "latitude"),
		Lng:       numberField(raw, "lng", "longitude"),
		EtaMin:    nonNegativeInt(etaMinutes(raw)),
		DistanceM: nonNegativeInt(distanceMeters(raw)),
		Category:  normalizeCategory(raw),
		PhotoURL:  photoURL(raw),
	}
}

// NormalizeAll normalizes every record, keeping order.
func NormalizeAll(raws []map[string]any) []Spot {
	spots := make([]Spot, 0, len(raws))
	for _, raw := range raws {
		spots = append(spots, Normalize(raw))
	}
	return spots
}

// distanceMeters resolves distance_m, then distance_km, then distance,
// then the meters embedded in eta_text.
func distanceMeters(raw map[string]any) float64 {
	if v, ok := raw["distance_m"]; ok && isNumber(v) {
		m, _ := toNumber(v)
		return m
	}
	if v, ok := raw["distance_km"]; ok && isNumber(v) {
		km, _ := toNumber(v)
		return math.Round(km * 1000)
	}
	if v, ok := present(raw, "distance"); ok {
		if m, ok := toNumber(v); ok {
			return m
		}
	}
	if m, ok := fromEtaText(raw, etaMetersPattern); ok {
		return m
	}
	return 0
}

func etaMinutes(raw map[string]any) float64 {
	for _, key := range []string{"eta_min", "eta", "duration_min"} {
		if v, ok := present(raw, key); ok {
			if n, ok := toNumber(v); ok {
				return n
			}
		}
	}
	if n, ok := fromEtaText(raw, etaMinutesPattern); ok {
		return n
	}
	return 0
}

// fromEtaText extracts a number from free text such as "徒歩約9分・350m".
func fromEtaText(raw map[string]any, pattern *regexp.Regexp) (float64, bool) {
	v, ok := present(raw, "eta_text")
	if !ok {
		return 0, false
	}
	text, ok := v.(string)
	if !ok {
		return 0, false
	}
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func normalizeCategory(raw map[string]any) Category {
	v, _ := present(raw, "category", "cat")
	s, _ := v.(string)
	switch s {
	case "gourmet":
		return CategoryGourmet
	case "event":
		return CategoryEvent
	}
	return CategoryLocal
}

func photoURL(raw map[string]any) string {
	if s := stringField(raw, "photo_url"); s != "" {
		return s
	}
	return PlaceholderPhoto
}

// present returns the first key whose value is neither missing nor null.
func present(raw map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(raw map[string]any, keys ...string) string {
	v, ok := present(raw, keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

func numberField(raw map[string]any, keys ...string) float64 {
	v, ok := present(raw, keys...)
	if !ok {
		return 0
	}
	n, ok := toNumber(v)
	if !ok {
		return 0
	}
	return n
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64, json.Number:
		return true
	}
	return false
}

// toNumber coerces numbers and numeric strings. Blank strings are 0.
func toNumber(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int32:
		n = float64(t)
	case int64:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case bool:
		if t {
			n = 1
		}
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func nonNegativeInt(f float64) int {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(f))
}
