package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/serendigo/serendigo-backend-go/internal/detour"
	"github.com/serendigo/serendigo-backend-go/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second)
}

func TestSearch_QueryParameters(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(`[{"id": 1, "name": "a"}, {"spot_id": "b"}]`))
	})

	records, err := c.Search(context.Background(), detour.Query{
		Mode:       detour.ModeWalk,
		Minutes:    30,
		DetourType: detour.DetourFood,
		Lat:        35.681236,
		Lng:        139.767125,
		RadiusM:    1700,
		ExcludeIDs: []string{"x", "y"},
		Seed:       4242,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if got.Method != http.MethodGet || got.URL.Path != "/detour/search" {
		t.Errorf("unexpected request %s %s", got.Method, got.URL.Path)
	}
	q := got.URL.Query()
	checks := map[string]string{
		"mode":        "walk",
		"minutes":     "30",
		"detour_type": "food",
		"lat":         "35.681236",
		"lng":         "139.767125",
		"radius_m":    "1700",
		"seed":        "4242",
	}
	for k, want := range checks {
		if q.Get(k) != want {
			t.Errorf("%s: got %q, want %q", k, q.Get(k), want)
		}
	}
	if ids := q["exclude_ids"]; strings.Join(ids, ",") != "x,y" {
		t.Errorf("exclude_ids: got %v", ids)
	}
	if got.Header.Get("Authorization") != "" {
		t.Error("search must not send an Authorization header")
	}
}

func TestSearch_WrappedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"spots": [{"id": "a"}, "junk"]}`))
	})
	records, err := c.Search(context.Background(), detour.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0]["id"] != "a" {
		t.Errorf("unexpected records %v", records)
	}
}

func TestSearch_LargeIntegerIDsStayExact(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 9007199254740993, "distance_m": 420, "eta_min": 6}]`))
	})
	records, err := c.Search(context.Background(), detour.Query{})
	if err != nil {
		t.Fatal(err)
	}
	spot := detour.Normalize(records[0])
	if spot.ID != "9007199254740993" {
		t.Errorf("id lost precision: %q", spot.ID)
	}
	if spot.DistanceM != 420 || spot.EtaMin != 6 {
		t.Errorf("numeric fields not decoded: %+v", spot)
	}
}

func TestSearch_Non2xxIsHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail": "upstream down"}`))
	})
	_, err := c.Search(context.Background(), detour.Query{})

	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if herr.StatusCode != http.StatusBadGateway {
		t.Errorf("status: got %d", herr.StatusCode)
	}
	if !strings.Contains(err.Error(), "HTTP 502 Bad Gateway") || !strings.Contains(err.Error(), "upstream down") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if herr.Detail() != "upstream down" {
		t.Errorf("detail: got %q", herr.Detail())
	}
}

func TestHTTPError_DetailFallbacks(t *testing.T) {
	e := &HTTPError{StatusCode: 400, Body: []byte(`{"error": "bad place"}`)}
	if e.Detail() != "bad place" {
		t.Errorf("got %q", e.Detail())
	}
	e = &HTTPError{StatusCode: 500, Body: []byte(`oops`)}
	if e.Detail() != "status 500" {
		t.Errorf("got %q", e.Detail())
	}
	e = &HTTPError{StatusCode: 422, Body: []byte(`{"detail": [{"msg": "field required"}]}`)}
	if !strings.Contains(e.Detail(), "field required") {
		t.Errorf("got %q", e.Detail())
	}
}

func TestSearch_TransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	if _, err := c.Search(context.Background(), detour.Query{}); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestRegisterVisit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/visits/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["destinationId"] != "ChIJ123" || body["userId"] != "u1" {
			t.Errorf("unexpected body %v", body)
		}
		w.Write([]byte(`{"visit": {"id": 9}, "guide": {"guide_text": "ようこそ", "audioUrl": "/media/a.mp3"}}`))
	})

	uid := "u1"
	res, err := c.RegisterVisit(context.Background(), "ChIJ123", &uid)
	if err != nil {
		t.Fatal(err)
	}
	if res.Guide.Text != "ようこそ" || res.Guide.AudioURL != "/media/a.mp3" {
		t.Errorf("unexpected guide %+v", res.Guide)
	}

	if _, err := c.RegisterVisit(context.Background(), "", nil); !errors.Is(err, ErrMissingPlaceID) {
		t.Errorf("expected ErrMissingPlaceID, got %v", err)
	}
}

func TestLogin_NormalizesUserID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if strings.Contains(string(b), "nobody") {
			w.Write([]byte(`{"name": "ghost"}`))
			return
		}
		w.Write([]byte(`{"user_id": 17, "name": "花子"}`))
	})

	res, err := c.Login(context.Background(), "hanako@example.com", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if res.UserID != "17" || res.Name != "花子" {
		t.Errorf("unexpected result %+v", res)
	}

	if _, err := c.Login(context.Background(), "nobody@example.com", "x"); !errors.Is(err, ErrMissingUserID) {
		t.Errorf("expected ErrMissingUserID, got %v", err)
	}
}

func TestGuideHistory_SendsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"summary": {"travel_guides": 2, "detours": 1}, "days": [{"date": "2026-10-15", "items": [{"id": 1, "guide_type": "detour", "title": "寄り道", "started_at": "2026-10-15T09:00:00Z", "spots_count": 3}]}]}`))
	})

	h, err := c.GuideHistory(context.Background(), "tok")
	if err != nil {
		t.Fatal(err)
	}
	if h.Summary.TravelGuides != 2 || len(h.Days) != 1 || h.Days[0].Items[0].GuideType != models.GuideDetour {
		t.Errorf("unexpected history %+v", h)
	}

	if _, err := c.GuideHistory(context.Background(), ""); err == nil {
		t.Error("expected unauthorized error")
	}
}

func TestPredictions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("input") != "東京" {
			t.Errorf("unexpected input %q", r.URL.Query().Get("input"))
		}
		w.Write([]byte(`{"items": [
			{"placeId": "p1", "name": "東京タワー"},
			{"place_id": "p2", "description": "東京駅, 千代田区"},
			{"place_id": "p3", "structured_formatting": {"main_text": "東京ドーム"}},
			{"name": "no id"}
		]}`))
	})

	preds, err := c.Predictions(context.Background(), "東京", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(preds) != 3 {
		t.Fatalf("expected 3 predictions, got %+v", preds)
	}
	if preds[2].Label != "東京ドーム" {
		t.Errorf("structured main_text not used: %+v", preds[2])
	}
}

func TestGooglePlaces(t *testing.T) {
	var q map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
		w.Write([]byte(`{"predictions": [
			{"description": "浅草寺, 台東区", "place_id": "g1", "structured_formatting": {"main_text": "浅草寺"}},
			{"description": "浅草駅", "place_id": "g2"}
		]}`))
	})
	g := NewGooglePlaces(c, "key").WithEndpoint(c.BaseURL() + "/autocomplete")

	preds, err := g.Predictions(context.Background(), "浅草", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(preds) != 1 || preds[0].Label != "浅草寺" {
		t.Errorf("unexpected predictions %+v", preds)
	}
	if q["language"][0] != "ja" || q["components"][0] != "country:jp" || q["key"][0] != "key" {
		t.Errorf("unexpected query %v", q)
	}
}
