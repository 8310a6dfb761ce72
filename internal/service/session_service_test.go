package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/serendigo/serendigo-backend-go/internal/detour"
	"github.com/serendigo/serendigo-backend-go/internal/models"
)

type stubRecommender struct {
	mu      sync.Mutex
	calls   int
	records []map[string]any
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (r *stubRecommender) Search(_ context.Context, q detour.Query) ([]map[string]any, error) {
	r.mu.Lock()
	r.calls++
	block, entered := r.block, r.entered
	r.mu.Unlock()

	if block != nil {
		entered <- struct{}{}
		<-block
	}
	return r.records, r.err
}

type memoryAttempts struct {
	mu   sync.Mutex
	recs []models.AttemptRecord
}

func (m *memoryAttempts) Insert(_ context.Context, rec *models.AttemptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.recs) + 1)
	m.recs = append(m.recs, *rec)
	return nil
}

func (m *memoryAttempts) List(_ context.Context, filter models.AttemptFilter) ([]models.AttemptRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AttemptRecord{}
	for _, r := range m.recs {
		if r.SessionID == filter.SessionID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

type recordingHistory struct {
	token  string
	inputs []models.CreateGuideHistoryInput
	err    error
}

func (h *recordingHistory) CreateGuideHistory(_ context.Context, token string, input models.CreateGuideHistoryInput) (*models.CreateGuideHistoryResponse, error) {
	if h.err != nil {
		return nil, h.err
	}
	h.token = token
	h.inputs = append(h.inputs, input)
	return &models.CreateGuideHistoryResponse{ID: 77}, nil
}

func threeSpots() []map[string]any {
	return []map[string]any{
		{"id": "a", "name": "A", "lat": 35.68, "lng": 139.76, "distance_m": 300.0, "eta_min": 4.0, "category": "gourmet"},
		{"id": "b", "name": "B", "lat": 35.69, "lng": 139.77, "distance_m": 900.0, "eta_min": 12.0},
		{"id": "c", "name": "C", "lat": 35.67, "lng": 139.75, "distance_km": 1.25, "eta_text": "約15分"},
	}
}

func walk30() detour.SessionConfig {
	return detour.SessionConfig{Mode: detour.ModeWalk, DurationMinutes: 30, Category: detour.CategoryGourmet}
}

func TestSessionService_CreateRunsInitialFetch(t *testing.T) {
	rec := &stubRecommender{records: threeSpots()}
	store := &memoryAttempts{}
	svc := NewSessionService(rec, store, nil, time.Minute)

	v, err := svc.Create(context.Background(), walk30(), &Claims{UserID: "u1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.ID == "" || len(v.Spots) != 3 || len(v.Cards) != 3 {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.Cards[0].Color != "green" || v.Cards[0].Badge != "徒歩 約4分・300m" {
		t.Errorf("unexpected card %+v", v.Cards[0])
	}
	if v.Center != detour.DefaultOrigin {
		t.Errorf("center: got %+v", v.Center)
	}
	if svc.Count() != 1 {
		t.Errorf("expected 1 open session, got %d", svc.Count())
	}

	if len(store.recs) != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", len(store.recs))
	}
	a := store.recs[0]
	if a.Manual || a.UserID != "u1" || a.DetourType != "food" || a.RadiusM != detour.BaseRadiusM || a.ResultCount != 3 {
		t.Errorf("unexpected attempt %+v", a)
	}
}

func TestSessionService_CreateRejectsUnreadyConditions(t *testing.T) {
	rec := &stubRecommender{}
	svc := NewSessionService(rec, nil, nil, time.Minute)

	_, err := svc.Create(context.Background(), detour.SessionConfig{Mode: detour.ModeWalk}, nil)
	if !errors.Is(err, ErrInvalidConditions) {
		t.Fatalf("expected ErrInvalidConditions, got %v", err)
	}
	if rec.calls != 0 {
		t.Error("no search should be issued")
	}
}

func TestSessionService_RetryWidensAndRecords(t *testing.T) {
	rec := &stubRecommender{records: threeSpots()[:1]}
	store := &memoryAttempts{}
	svc := NewSessionService(rec, store, nil, time.Minute)

	v, _ := svc.Create(context.Background(), walk30(), nil)
	if !v.NextWillWiden {
		t.Error("one result should make the next retry widen")
	}

	v, err := svc.Retry(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if v.Attempts != 1 || v.RadiusM != detour.BaseRadiusM+detour.WidenStepM {
		t.Errorf("unexpected state after retry: attempts=%d radius=%d", v.Attempts, v.RadiusM)
	}

	list, total, err := svc.Attempts(context.Background(), v.ID, models.AttemptFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || !list[1].Manual || !list[1].Widened || list[1].RadiusM != 1700 {
		t.Errorf("unexpected attempts %+v", list)
	}
}

func TestSessionService_RetryWhileLoadingIsBusy(t *testing.T) {
	rec := &stubRecommender{records: threeSpots()}
	svc := NewSessionService(rec, nil, nil, time.Minute)
	v, _ := svc.Create(context.Background(), walk30(), nil)

	rec.mu.Lock()
	rec.block = make(chan struct{})
	rec.entered = make(chan struct{}, 1)
	rec.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Retry(context.Background(), v.ID)
		done <- err
	}()
	<-rec.entered

	if _, err := svc.Retry(context.Background(), v.ID); !errors.Is(err, detour.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	close(rec.block)
	if err := <-done; err != nil {
		t.Fatalf("first retry: %v", err)
	}
}

func TestSessionService_FailureShowsSamples(t *testing.T) {
	rec := &stubRecommender{err: errors.New("connection refused")}
	store := &memoryAttempts{}
	svc := NewSessionService(rec, store, nil, time.Minute)

	v, err := svc.Create(context.Background(), walk30(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Spots) != 3 || v.Error == "" {
		t.Errorf("expected fallback samples with a message, got %+v", v.State)
	}
	if !store.recs[0].Fallback || store.recs[0].Error != "connection refused" {
		t.Errorf("unexpected attempt %+v", store.recs[0])
	}
}

func TestSessionService_UnknownSession(t *testing.T) {
	svc := NewSessionService(&stubRecommender{}, nil, nil, time.Minute)
	if _, err := svc.View("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("View: got %v", err)
	}
	if _, err := svc.Retry(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Retry: got %v", err)
	}
	if _, err := svc.Close(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Close: got %v", err)
	}
}

func TestSessionService_SessionsExpire(t *testing.T) {
	svc := NewSessionService(&stubRecommender{records: threeSpots()}, nil, nil, 50*time.Millisecond)
	v, _ := svc.Create(context.Background(), walk30(), nil)

	time.Sleep(120 * time.Millisecond)
	if _, err := svc.View(v.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected expired session, got %v", err)
	}
}

func fix(lat, lng, accuracy float64) models.PositionUpdate {
	return models.PositionUpdate{Lat: &lat, Lng: &lng, Accuracy: &accuracy}
}

func TestSessionService_PositionRecentersOnce(t *testing.T) {
	rec := &stubRecommender{records: threeSpots()}
	svc := NewSessionService(rec, nil, nil, time.Minute)
	v, _ := svc.Create(context.Background(), walk30(), nil)

	acc := 5.0
	first, err := svc.UpdatePosition(v.ID, fix(35.70, 139.70, acc))
	if err != nil {
		t.Fatal(err)
	}
	if !first.Recenter || first.Center.Lat != 35.70 {
		t.Errorf("first fix should recenter: %+v", first)
	}
	if first.Position.Accuracy != 20 {
		t.Errorf("accuracy not clamped: %v", first.Position.Accuracy)
	}

	acc = 500
	second, _ := svc.UpdatePosition(v.ID, fix(35.71, 139.71, acc))
	if second.Recenter || second.Center.Lat != 35.70 {
		t.Errorf("later fixes must not recenter: %+v", second)
	}
	if second.Position.Accuracy != 200 {
		t.Errorf("accuracy not clamped: %v", second.Position.Accuracy)
	}

	if rec.calls != 1 {
		t.Errorf("position updates must not fetch, got %d searches", rec.calls)
	}
	view, _ := svc.View(v.ID)
	if view.Position == nil || view.Position.Lat != 35.71 {
		t.Errorf("latest position not kept: %+v", view.Position)
	}
}

func TestSessionService_AnnounceAndToggleAudio(t *testing.T) {
	svc := NewSessionService(&stubRecommender{records: threeSpots()}, nil, nil, time.Minute)
	v, _ := svc.Create(context.Background(), walk30(), nil)

	text, err := svc.Announce(context.Background(), v.ID, "a")
	if err != nil {
		t.Fatal(err)
	}
	if text != "A。。。徒歩で約4分、距離は約300メートルです。" {
		t.Errorf("unexpected narration %q", text)
	}
	if _, err := svc.Announce(context.Background(), v.ID, "zzz"); !errors.Is(err, ErrSpotNotFound) {
		t.Errorf("expected ErrSpotNotFound, got %v", err)
	}

	playing, _ := svc.ToggleAudio(context.Background(), v.ID)
	if !playing {
		t.Error("first toggle should start audio")
	}
	playing, _ = svc.ToggleAudio(context.Background(), v.ID)
	if playing {
		t.Error("second toggle should pause audio")
	}
}

func TestSessionService_CloseSavesHistory(t *testing.T) {
	history := &recordingHistory{}
	svc := NewSessionService(&stubRecommender{records: threeSpots()}, nil, history, time.Minute)
	owner := &Claims{UserID: "u1", BackendToken: "btk"}
	v, _ := svc.Create(context.Background(), walk30(), owner)

	res, err := svc.Close(context.Background(), v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.HistoryID == nil || *res.HistoryID != 77 {
		t.Errorf("unexpected close result %+v", res)
	}
	if history.token != "btk" || len(history.inputs) != 1 {
		t.Fatalf("history not written: %+v", history)
	}
	in := history.inputs[0]
	if in.GuideType != models.GuideDetour || in.SpotsCount != 3 || in.Params.Mode != "walk" || in.Params.Duration != 30 || in.Params.Category != "gourmet" {
		t.Errorf("unexpected history input %+v", in)
	}
	if in.Title != "ご当地グルメの寄り道" {
		t.Errorf("unexpected title %q", in.Title)
	}

	if _, err := svc.View(v.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Error("closed session should be gone")
	}
}

func TestSessionService_CloseIgnoresHistoryFailure(t *testing.T) {
	history := &recordingHistory{err: errors.New("backend down")}
	svc := NewSessionService(&stubRecommender{records: threeSpots()}, nil, history, time.Minute)
	v, _ := svc.Create(context.Background(), walk30(), &Claims{UserID: "u1"})

	res, err := svc.Close(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("history failure must not fail close: %v", err)
	}
	if res.HistoryID != nil {
		t.Error("no history id expected")
	}
}

func TestSessionService_CloseAnonymousSkipsHistory(t *testing.T) {
	history := &recordingHistory{}
	svc := NewSessionService(&stubRecommender{records: threeSpots()}, nil, history, time.Minute)
	v, _ := svc.Create(context.Background(), walk30(), nil)

	if _, err := svc.Close(context.Background(), v.ID); err != nil {
		t.Fatal(err)
	}
	if len(history.inputs) != 0 {
		t.Error("anonymous sessions are not saved")
	}
}

func TestSessionService_Map(t *testing.T) {
	svc := NewSessionService(&stubRecommender{records: threeSpots()}, nil, nil, time.Minute)
	v, _ := svc.Create(context.Background(), walk30(), nil)

	fc, err := svc.Map(v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 3 {
		t.Fatalf("expected 3 spot features, got %d", len(fc.Features))
	}
	if fc.Features[0].Properties["color"] != "green" || fc.Features[0].Properties["popup"] != "徒歩 約4分・300m" {
		t.Errorf("unexpected properties %v", fc.Features[0].Properties)
	}
	if len(fc.BBox) != 4 {
		t.Errorf("expected bbox, got %v", fc.BBox)
	}

	acc := 50.0
	svc.UpdatePosition(v.ID, fix(35.68, 139.76, acc))
	fc, _ = svc.Map(v.ID)
	if len(fc.Features) != 5 {
		t.Fatalf("expected spots plus user and accuracy, got %d", len(fc.Features))
	}
	if fc.Features[4].Properties["radius_m"] != 50.0 {
		t.Errorf("unexpected accuracy feature %v", fc.Features[4].Properties)
	}

	b, err := json.Marshal(fc)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	json.Unmarshal(b, &decoded)
	if decoded["type"] != "FeatureCollection" || decoded["zoom"] != float64(MapZoom) {
		t.Errorf("unexpected json %s", b)
	}
	center := decoded["center"].([]any)
	if center[0] != 139.76 || center[1] != 35.68 {
		t.Errorf("map should be centered on the first fix, got %v", center)
	}
}

func TestSessionService_RejectsInvalidCoordinates(t *testing.T) {
	rec := &stubRecommender{records: threeSpots()}
	svc := NewSessionService(rec, nil, nil, time.Minute)

	for _, origin := range []detour.Coordinate{
		{Lat: math.NaN(), Lng: 139.7},
		{Lat: 999, Lng: 139.7},
		{Lat: 35.6, Lng: math.Inf(-1)},
	} {
		cfg := walk30()
		o := origin
		cfg.Origin = &o
		if _, err := svc.Create(context.Background(), cfg, nil); !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("origin %+v: expected ErrInvalidCoordinate, got %v", origin, err)
		}
	}
	if svc.Count() != 0 || rec.calls != 0 {
		t.Errorf("rejected sessions must not be stored or fetched: count=%d calls=%d", svc.Count(), rec.calls)
	}

	v, _ := svc.Create(context.Background(), walk30(), nil)
	if _, err := svc.UpdatePosition(v.ID, fix(math.NaN(), 139.7, 10)); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
	if _, err := svc.UpdatePosition(v.ID, models.PositionUpdate{}); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("missing lat/lng: expected ErrInvalidCoordinate, got %v", err)
	}
	// The equator and prime meridian are valid positions.
	if _, err := svc.UpdatePosition(v.ID, fix(0, 0, 10)); err != nil {
		t.Errorf("0,0 rejected: %v", err)
	}
}
