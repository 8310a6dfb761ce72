package models

// GuideType distinguishes the two guide flows in the history.
type GuideType string

const (
	GuideTalk   GuideType = "talk"   // travel guide
	GuideDetour GuideType = "detour" // detour guide
)

// HistoryItem is one guide in the history list.
type HistoryItem struct {
	ID          int64     `json:"id"`
	GuideType   GuideType `json:"guide_type"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Description string    `json:"description,omitempty"`
	StartedAt   string    `json:"started_at"` // ISO8601
	DurationMin *int      `json:"duration_min,omitempty"`
	SpotsCount  int       `json:"spots_count"`
}

// HistorySummary holds the aggregate counters shown above the list.
type HistorySummary struct {
	TravelGuides int      `json:"travel_guides"`
	Detours      int      `json:"detours"`
	Hours        *float64 `json:"hours,omitempty"`
}

// HistoryDay groups the items of one calendar day (YYYY-MM-DD).
type HistoryDay struct {
	Date  string        `json:"date"`
	Items []HistoryItem `json:"items"`
}

// HistoryResponse is the backend's GET /guide-history payload.
type HistoryResponse struct {
	Summary HistorySummary `json:"summary"`
	Days    []HistoryDay   `json:"days"`
}

// HistorySection is a relative-day bucket rendered by the library screen.
type HistorySection struct {
	Label string        `json:"label"`
	Items []HistoryItem `json:"items"`
}

// HistoryView is what the library screen renders.
type HistoryView struct {
	Summary  HistorySummary   `json:"summary"`
	Sections []HistorySection `json:"sections"`
	Empty    bool             `json:"empty"`
}

// HistorySpot is a spot remembered in a history record.
type HistorySpot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Genre    string `json:"genre,omitempty"`
	Desc     string `json:"desc,omitempty"`
}

// SearchParams are the conditions a detour was searched with.
type SearchParams struct {
	Mode     string `json:"mode,omitempty"`
	Duration int    `json:"duration,omitempty"`
	Category string `json:"category,omitempty"`
	RadiusM  int    `json:"radius_m,omitempty"`
}

// HistoryDetail is the backend's GET /guide-history/:id payload.
type HistoryDetail struct {
	ID          int64         `json:"id"`
	GuideType   GuideType     `json:"guide_type"`
	Title       string        `json:"title"`
	Subtitle    string        `json:"subtitle,omitempty"`
	Description string        `json:"description,omitempty"`
	StartedAt   string        `json:"started_at"`
	DurationMin *int          `json:"duration_min,omitempty"`
	SpotsCount  int           `json:"spots_count,omitempty"`
	Spots       []HistorySpot `json:"spots,omitempty"`
	Params      *SearchParams `json:"params,omitempty"`
}

// CreateGuideHistoryInput is the POST /guide-history body.
type CreateGuideHistoryInput struct {
	GuideType   GuideType     `json:"guide_type" binding:"required"`
	Title       string        `json:"title" binding:"required"`
	Subtitle    string        `json:"subtitle,omitempty"`
	Description string        `json:"description,omitempty"`
	StartedAt   string        `json:"started_at" binding:"required"`
	DurationMin *int          `json:"duration_min,omitempty"`
	SpotsCount  int           `json:"spots_count,omitempty"`
	Spots       []HistorySpot `json:"spots,omitempty"`
	Params      *SearchParams `json:"params,omitempty"`
}

// CreateGuideHistoryResponse carries the new record id.
type CreateGuideHistoryResponse struct {
	ID int64 `json:"id"`
}
