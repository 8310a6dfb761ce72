package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/serendigo/serendigo-backend-go/internal/detour"
)

// SearchPath is the recommendation endpoint.
const SearchPath = "/detour/search"

// Search implements detour.Recommender.
func (c *Client) Search(ctx context.Context, q detour.Query) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("mode", string(q.Mode))
	params.Set("minutes", strconv.Itoa(q.Minutes))
	params.Set("detour_type", string(q.DetourType))
	params.Set("lat", strconv.FormatFloat(q.Lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(q.Lng, 'f', -1, 64))
	params.Set("radius_m", strconv.Itoa(q.RadiusM))
	for _, id := range q.ExcludeIDs {
		params.Add("exclude_ids", id)
	}
	params.Set("seed", strconv.Itoa(q.Seed))

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, SearchPath, params, "", nil, &raw); err != nil {
		return nil, err
	}
	return decodeRecords(raw)
}

// decodeRecords accepts a bare array or an object wrapping it in
// "spots" or "items".
func decodeRecords(raw json.RawMessage) ([]map[string]any, error) {
	if len(raw) == 0 {
		return []map[string]any{}, nil
	}

	var list []any
	if err := decodeNumbers(raw, &list); err != nil {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decoding search response: %w", err)
		}
		inner, ok := wrapped["spots"]
		if !ok {
			inner, ok = wrapped["items"]
		}
		if !ok {
			return []map[string]any{}, nil
		}
		if err := decodeNumbers(inner, &list); err != nil {
			return nil, fmt.Errorf("decoding search response: %w", err)
		}
	}

	records := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			records = append(records, m)
		}
	}
	return records, nil
}

// decodeNumbers keeps numbers as json.Number so large integer ids stay exact.
func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
