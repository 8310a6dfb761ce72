package detour

import "strconv"

// Mode is the travel mode chosen on the detour condition screen.
type Mode string

const (
	ModeWalk  Mode = "walk"
	ModeDrive Mode = "drive"
)

// Category is the client-facing spot category.
type Category string

const (
	CategoryLocal   Category = "local"
	CategoryGourmet Category = "gourmet"
	CategoryEvent   Category = "event"
)

// PlaceholderPhoto is shown on cards whose spot carries no photo.
const PlaceholderPhoto = "/placeholders/spot.png"

// Durations lists the selectable detour durations in minutes.
var Durations = []int{15, 30, 45, 60}

// Spot is a recommended point of interest after normalization.
// Every field is always populated.
type Spot struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Genre     string   `json:"genre"`
	Desc      string   `json:"desc"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	EtaMin    int      `json:"eta_min"`
	DistanceM int      `json:"distance_m"`
	Category  Category `json:"category"`
	PhotoURL  string   `json:"photo_url"`
}

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultOrigin is used when the client sends no coordinates (Tokyo Station).
var DefaultOrigin = Coordinate{Lat: 35.681236, Lng: 139.767125}

// Profile is the optional user profile captured at registration.
type Profile struct {
	Gender   string `json:"gender,omitempty"`
	AgeRange string `json:"age_range,omitempty"`
}

// ParseMode accepts only "walk" and "drive".
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeWalk, ModeDrive:
		return Mode(s), true
	}
	return "", false
}

// ParseDuration accepts one of Durations given as decimal text.
func ParseDuration(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if !ValidDuration(n) {
		return 0, false
	}
	return n, true
}

// ValidDuration reports whether n is a selectable duration.
func ValidDuration(n int) bool {
	for _, d := range Durations {
		if d == n {
			return true
		}
	}
	return false
}

// ParseCategory accepts local, gourmet and event. Anything else is unset.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryLocal, CategoryGourmet, CategoryEvent:
		return Category(s), true
	}
	return "", false
}
