package detour

import "fmt"

// ColorName is the marker and badge color of a category.
func ColorName(c Category) string {
	switch c {
	case CategoryGourmet:
		return "green"
	case CategoryEvent:
		return "blue"
	}
	return "red"
}

// Icon is the card chip shown for a category.
func Icon(c Category) string {
	switch c {
	case CategoryGourmet:
		return "🍜"
	case CategoryEvent:
		return "📅"
	}
	return "📍"
}

// CategoryLabel is the legend label of a category.
func CategoryLabel(c Category) string {
	switch c {
	case CategoryGourmet:
		return "ご当地グルメ"
	case CategoryEvent:
		return "イベント"
	}
	return "ローカル名所"
}

// FormatDistance renders meters as "350m" or "1.2km".
func FormatDistance(m int) string {
	if m >= 1000 {
		return fmt.Sprintf("%.1fkm", float64(m)/1000)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatETA renders minutes for the travel mode, e.g. "徒歩 約9分".
func FormatETA(minutes int, mode Mode) string {
	return fmt.Sprintf("%s 約%d分", modeLabel(mode), minutes)
}

func modeLabel(mode Mode) string {
	if mode == ModeDrive {
		return "車"
	}
	return "徒歩"
}

// Card is the card-list view of a spot.
type Card struct {
	Spot
	Badge string `json:"badge"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Cards builds the card list for the given mode. An unresolved mode
// renders as walking.
func Cards(spots []Spot, mode Mode) []Card {
	cards := make([]Card, 0, len(spots))
	for _, s := range spots {
		cards = append(cards, Card{
			Spot:  s,
			Badge: PopupText(s, mode),
			Color: ColorName(s.Category),
			Icon:  Icon(s.Category),
		})
	}
	return cards
}

// PopupText is the ETA and distance line shown on markers and badges.
func PopupText(s Spot, mode Mode) string {
	return FormatETA(s.EtaMin, mode) + "・" + FormatDistance(s.DistanceM)
}
