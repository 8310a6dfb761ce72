package detour

import "strings"

const (
	// BaseRadiusM is the search radius of a fresh session.
	BaseRadiusM = 1200
	// WidenStepM is added to the radius on every committed widen.
	WidenStepM = 500
	// MinResults below this count force the next retry to widen.
	MinResults = 3
)

// DetourType is the backend's category vocabulary.
type DetourType string

const (
	DetourFood     DetourType = "food"
	DetourEvent    DetourType = "event"
	DetourSpot     DetourType = "spot"
	DetourSouvenir DetourType = "souvenir"
)

// ToDetourType maps a client category (or alias) to the backend vocabulary.
// The mapping is total: unknown and empty input map to souvenir.
func ToDetourType(category string) DetourType {
	switch strings.ToLower(category) {
	case "gourmet", "food":
		return DetourFood
	case "event":
		return DetourEvent
	case "local", "attraction", "sight", "local_spot":
		return DetourSpot
	}
	return DetourSouvenir
}

// ShouldWiden decides whether the retry following a result set of
// resultCount spots widens the radius. attemptIndex is the number of
// retries already made.
func ShouldWiden(resultCount, attemptIndex int) bool {
	return resultCount < MinResults || attemptIndex%2 == 1
}

// EffectiveRadius is the radius sent for one attempt.
func EffectiveRadius(radius int, widen bool) int {
	if widen {
		return radius + WidenStepM
	}
	return radius
}
