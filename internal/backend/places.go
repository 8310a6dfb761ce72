package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/serendigo/serendigo-backend-go/internal/models"
)

// Predictions asks the backend relay for autocomplete candidates.
func (c *Client) Predictions(ctx context.Context, input string, limit int) ([]models.Prediction, error) {
	params := url.Values{}
	params.Set("input", input)
	params.Set("limit", strconv.Itoa(limit))

	var resp struct {
		Items []map[string]any `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/places/predictions", params, "", nil, &resp); err != nil {
		return nil, err
	}

	preds := make([]models.Prediction, 0, len(resp.Items))
	for _, item := range resp.Items {
		p := models.Prediction{
			Label:   anyString(item, "name", "description", "label"),
			PlaceID: anyString(item, "placeId", "place_id"),
		}
		if p.Label == "" {
			if sf, ok := item["structured_formatting"].(map[string]any); ok {
				p.Label = anyString(sf, "main_text")
			}
		}
		if p.Label != "" && p.PlaceID != "" {
			preds = append(preds, p)
		}
	}
	return preds, nil
}

// PlaceDetails fetches the types of one place.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)

	var details models.PlaceDetails
	if err := c.do(ctx, http.MethodGet, "/places/details", params, "", nil, &details); err != nil {
		return nil, err
	}
	if details.PlaceID == "" {
		details.PlaceID = placeID
	}
	return &details, nil
}

// anyString reads the first non-empty key as a string. Numeric ids are
// rendered without a decimal point.
func anyString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch t := m[k].(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return ""
}
