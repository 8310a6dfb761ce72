package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/serendigo/serendigo-backend-go/internal/models"
)

// ErrMissingPlaceID is returned before any call when no place is given.
var ErrMissingPlaceID = errors.New("place_id is required")

// RegisterVisit records a visit to a place and returns the generated guide.
func (c *Client) RegisterVisit(ctx context.Context, placeID string, userID *string) (*models.VisitResult, error) {
	if placeID == "" {
		return nil, ErrMissingPlaceID
	}

	body := map[string]any{
		"destinationId": placeID,
		"userId":        userID,
	}
	var resp struct {
		Visit json.RawMessage `json:"visit"`
		Guide map[string]any  `json:"guide"`
	}
	if err := c.do(ctx, http.MethodPost, "/visits/", nil, "", body, &resp); err != nil {
		return nil, err
	}

	return &models.VisitResult{
		Visit: resp.Visit,
		Guide: models.Guide{
			Text:     anyString(resp.Guide, "guideText", "guide_text"),
			AudioURL: anyString(resp.Guide, "audioUrl", "audio_url"),
		},
	}, nil
}

// RecentVisits lists the user's most recent destinations.
func (c *Client) RecentVisits(ctx context.Context, userID string, limit int) ([]models.RecentVisit, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("limit", strconv.Itoa(limit))

	var visits []models.RecentVisit
	if err := c.do(ctx, http.MethodGet, "/visits/recent", params, "", nil, &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// RegisterDestination registers a place chosen on the destination screen.
func (c *Client) RegisterDestination(ctx context.Context, placeID string) (*models.Destination, error) {
	if placeID == "" {
		return nil, ErrMissingPlaceID
	}

	params := url.Values{}
	params.Set("place_id", placeID)

	var raw map[string]any
	if err := c.do(ctx, http.MethodPost, "/destinations/register", params, "", nil, &raw); err != nil {
		return nil, err
	}

	dest := &models.Destination{
		PlaceID: anyString(raw, "placeId", "place_id"),
		Name:    anyString(raw, "name"),
	}
	if dest.PlaceID == "" {
		dest.PlaceID = placeID
	}
	return dest, nil
}
