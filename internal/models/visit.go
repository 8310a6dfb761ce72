package models

import "encoding/json"

// Guide is a generated narrated guide.
type Guide struct {
	Text     string `json:"guide_text"`
	AudioURL string `json:"audio_url"`
}

// VisitResult is the outcome of registering a visit.
type VisitResult struct {
	Visit json.RawMessage `json:"visit,omitempty"`
	Guide Guide           `json:"guide"`
}

// RecentVisit is an entry of the user's recent destinations.
type RecentVisit struct {
	PlaceID string `json:"placeId"`
	Name    string `json:"name"`
}

// Destination is a registered destination.
type Destination struct {
	PlaceID string `json:"placeId"`
	Name    string `json:"name,omitempty"`
}
