package models

import "time"

// SessionRequest opens a detour session. Fields mirror the query string the
// condition screen navigates with, so they bind from either form or JSON.
type SessionRequest struct {
	Mode     string   `form:"mode" json:"mode"`         // walk, drive
	Duration string   `form:"duration" json:"duration"` // 15, 30, 45, 60
	Category string   `form:"category" json:"category"` // local, gourmet, event (optional)
	Lat      *float64 `form:"lat" json:"lat"`
	Lng      *float64 `form:"lng" json:"lng"`
	Gender   string   `form:"gender" json:"gender"`
	AgeRange string   `form:"age_range" json:"age_range"`
}

// PositionUpdate is one live geolocation fix from the client.
type PositionUpdate struct {
	Lat      *float64 `json:"lat" binding:"required"`
	Lng      *float64 `json:"lng" binding:"required"`
	Accuracy *float64 `json:"accuracy"` // Meters
}

// AttemptRecord is one detour fetch as stored in detour_attempts.
type AttemptRecord struct {
	ID          int64     `json:"id" db:"id"`
	SessionID   string    `json:"session_id" db:"session_id"`
	UserID      string    `json:"user_id,omitempty" db:"user_id"`
	Mode        string    `json:"mode" db:"mode"`
	DurationMin int       `json:"duration_min" db:"duration_min"`
	DetourType  string    `json:"detour_type" db:"detour_type"`
	Attempts    int       `json:"attempts" db:"attempts"` // Manual retries so far
	Manual      bool      `json:"manual" db:"manual"`
	Widened     bool      `json:"widened" db:"widened"`
	RadiusM     int       `json:"radius_m" db:"radius_m"`
	ResultCount int       `json:"result_count" db:"result_count"`
	Fallback    bool      `json:"fallback" db:"fallback"`
	Error       string    `json:"error,omitempty" db:"error"`
	Seed        int       `json:"seed" db:"seed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// AttemptFilter pages through the attempt log.
type AttemptFilter struct {
	SessionID string `form:"sessionId"`
	UserID    string `form:"userId"`
	Mode      string `form:"mode"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
