package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/serendigo/serendigo-backend-go/internal/models"
)

// GoogleAutocompleteURL is the Places autocomplete endpoint.
const GoogleAutocompleteURL = "https://maps.googleapis.com/maps/api/place/autocomplete/json"

// GooglePlaces queries Google Places autocomplete directly, restricted to
// Japanese results in Japan.
type GooglePlaces struct {
	client   *Client
	apiKey   string
	endpoint string
}

// NewGooglePlaces creates a source that shares c's HTTP client.
func NewGooglePlaces(c *Client, apiKey string) *GooglePlaces {
	return &GooglePlaces{client: c, apiKey: apiKey, endpoint: GoogleAutocompleteURL}
}

// WithEndpoint points the source at another URL (tests, proxies).
func (g *GooglePlaces) WithEndpoint(endpoint string) *GooglePlaces {
	g.endpoint = endpoint
	return g
}

// Predictions returns at most limit candidates.
func (g *GooglePlaces) Predictions(ctx context.Context, input string, limit int) ([]models.Prediction, error) {
	params := url.Values{}
	params.Set("input", input)
	params.Set("key", g.apiKey)
	params.Set("language", "ja")
	params.Set("components", "country:jp")

	var resp struct {
		Predictions []struct {
			Description          string `json:"description"`
			PlaceID              string `json:"place_id"`
			StructuredFormatting struct {
				MainText string `json:"main_text"`
			} `json:"structured_formatting"`
		} `json:"predictions"`
	}
	if err := g.client.do(ctx, http.MethodGet, g.endpoint, params, "", nil, &resp); err != nil {
		return nil, err
	}

	preds := make([]models.Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		label := p.StructuredFormatting.MainText
		if label == "" {
			label = p.Description
		}
		if label == "" || p.PlaceID == "" {
			continue
		}
		preds = append(preds, models.Prediction{Label: label, PlaceID: p.PlaceID})
		if limit > 0 && len(preds) >= limit {
			break
		}
	}
	return preds, nil
}
