package models

// Prediction is one place autocomplete candidate.
type Prediction struct {
	Label   string `json:"label"`
	PlaceID string `json:"placeId"`
}

// PlaceDetails is the subset of place details used for validation.
type PlaceDetails struct {
	PlaceID string   `json:"place_id"`
	Name    string   `json:"name,omitempty"`
	Types   []string `json:"types"`
}
