package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/serendigo/serendigo-backend-go/internal/detour"
	"github.com/serendigo/serendigo-backend-go/internal/logger"
	"github.com/serendigo/serendigo-backend-go/internal/models"
	"github.com/serendigo/serendigo-backend-go/internal/spatial"
)

var (
	// ErrSessionNotFound is returned for unknown, closed or expired sessions.
	ErrSessionNotFound = errors.New("detour session not found")
	// ErrSpotNotFound is returned when a spot id is not in the current list.
	ErrSpotNotFound = errors.New("spot not in current results")
	// ErrInvalidConditions is returned when mode or duration cannot be used.
	ErrInvalidConditions = errors.New("mode and duration are required")
	// ErrInvalidCoordinate is returned for a non-finite or out-of-range
	// latitude or longitude.
	ErrInvalidCoordinate = errors.New("lat must be within [-90, 90] and lng within [-180, 180]")
)

// recordTimeout bounds the detached writes done after a request returns.
const recordTimeout = 5 * time.Second

// AttemptStore persists the attempt log.
type AttemptStore interface {
	Insert(ctx context.Context, rec *models.AttemptRecord) error
	List(ctx context.Context, filter models.AttemptFilter) ([]models.AttemptRecord, int64, error)
}

// HistoryWriter stores finished guides.
type HistoryWriter interface {
	CreateGuideHistory(ctx context.Context, token string, input models.CreateGuideHistoryInput) (*models.CreateGuideHistoryResponse, error)
}

// Position is the user's last reported fix.
type Position struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Accuracy  float64   `json:"accuracy"` // Displayed circle radius in meters
	UpdatedAt time.Time `json:"updated_at"`
}

// DetourSession is one open detour screen.
type DetourSession struct {
	ID        string
	Owner     *Claims
	CreatedAt time.Time

	search   *detour.Session
	narrator *LogNarrator

	mu         sync.Mutex
	position   *Position
	center     detour.Coordinate
	recentered bool
}

// SessionView is the JSON rendering of a session.
type SessionView struct {
	ID string `json:"id"`
	detour.State
	Cards    []detour.Card     `json:"cards"`
	Center   detour.Coordinate `json:"center"`
	Position *Position         `json:"position,omitempty"`
	Playing  bool              `json:"audio_playing"`
}

// PositionResult tells the client whether to move the map.
type PositionResult struct {
	Position Position          `json:"position"`
	Recenter bool              `json:"recenter"`
	Center   detour.Coordinate `json:"center"`
}

// CloseResult reports what happened when a session was closed.
type CloseResult struct {
	HistoryID *int64 `json:"history_id,omitempty"`
}

// SessionService owns the open detour sessions.
type SessionService struct {
	rec      detour.Recommender
	attempts AttemptStore
	history  HistoryWriter
	sessions *cache.Cache
	now      func() time.Time
	opts     []detour.Option
}

// NewSessionService creates a registry whose sessions expire after ttl
// without activity.
func NewSessionService(rec detour.Recommender, attempts AttemptStore, history HistoryWriter, ttl time.Duration, opts ...detour.Option) *SessionService {
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(id string, _ interface{}) {
		logger.Log.Debug("detour session released", zap.String("session_id", id))
	})
	return &SessionService{
		rec:      rec,
		attempts: attempts,
		history:  history,
		sessions: c,
		now:      time.Now,
		opts:     opts,
	}
}

// Create opens a session and runs its initial fetch.
func (s *SessionService) Create(ctx context.Context, cfg detour.SessionConfig, owner *Claims) (*SessionView, error) {
	if !cfg.Ready() {
		return nil, ErrInvalidConditions
	}
	if o := cfg.Origin; o != nil && !spatial.ValidCoordinate(o.Lat, o.Lng) {
		return nil, ErrInvalidCoordinate
	}

	ds := &DetourSession{
		ID:        uuid.NewString(),
		Owner:     owner,
		CreatedAt: s.now(),
		center:    cfg.Center(),
	}
	ds.narrator = NewLogNarrator(ds.ID)

	opts := append([]detour.Option{detour.WithObserver(s.recorder(ds))}, s.opts...)
	ds.search = detour.NewSession(cfg, s.rec, opts...)
	s.sessions.SetDefault(ds.ID, ds)

	logger.Log.Info("detour session opened",
		zap.String("session_id", ds.ID),
		zap.String("mode", string(cfg.Mode)),
		zap.Int("duration_min", cfg.DurationMinutes),
		zap.String("category", string(cfg.Category)),
	)

	if _, err := ds.search.Start(ctx); err != nil {
		return nil, err
	}
	return ds.view(), nil
}

// Get returns an open session and extends its lifetime.
func (s *SessionService) Get(id string) (*DetourSession, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	ds := v.(*DetourSession)
	s.sessions.SetDefault(id, ds)
	return ds, nil
}

// View renders the current state.
func (s *SessionService) View(id string) (*SessionView, error) {
	ds, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return ds.view(), nil
}

// Retry runs the user's "find more" action. detour.ErrBusy is returned
// while a fetch is in flight.
func (s *SessionService) Retry(ctx context.Context, id string) (*SessionView, error) {
	ds, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if _, err := ds.search.Retry(ctx); err != nil {
		return nil, err
	}
	return ds.view(), nil
}

// UpdatePosition stores a geolocation fix. It never triggers a fetch. The
// first fix moves the map center; later ones do not.
func (s *SessionService) UpdatePosition(id string, update models.PositionUpdate) (*PositionResult, error) {
	ds, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if update.Lat == nil || update.Lng == nil || !spatial.ValidCoordinate(*update.Lat, *update.Lng) {
		return nil, ErrInvalidCoordinate
	}

	accuracy := 0.0
	if update.Accuracy != nil {
		accuracy = *update.Accuracy
	}
	pos := Position{
		Lat:       *update.Lat,
		Lng:       *update.Lng,
		Accuracy:  spatial.AccuracyRadius(accuracy),
		UpdatedAt: s.now(),
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.position = &pos
	recenter := !ds.recentered
	if recenter {
		ds.center = detour.Coordinate{Lat: pos.Lat, Lng: pos.Lng}
		ds.recentered = true
	}
	return &PositionResult{Position: pos, Recenter: recenter, Center: ds.center}, nil
}

// Announce reads one of the current spots out.
func (s *SessionService) Announce(ctx context.Context, id, spotID string) (string, error) {
	ds, err := s.Get(id)
	if err != nil {
		return "", err
	}
	st := ds.search.Snapshot()
	for _, sp := range st.Spots {
		if sp.ID == spotID {
			return detour.AnnounceSpot(ctx, ds.narrator, sp, st.Config.Mode)
		}
	}
	return "", ErrSpotNotFound
}

// ToggleAudio flips the session's guide audio.
func (s *SessionService) ToggleAudio(ctx context.Context, id string) (bool, error) {
	ds, err := s.Get(id)
	if err != nil {
		return false, err
	}
	return ds.narrator.ToggleAudio(ctx)
}

// Attempts lists the session's recorded fetches.
func (s *SessionService) Attempts(ctx context.Context, id string, filter models.AttemptFilter) ([]models.AttemptRecord, int64, error) {
	if _, err := s.Get(id); err != nil {
		return nil, 0, err
	}
	if s.attempts == nil {
		return []models.AttemptRecord{}, 0, nil
	}
	filter.SessionID = id
	return s.attempts.List(ctx, filter)
}

// Close drops the session. A signed-in user's session that showed spots is
// saved to the guide history; failures there are logged, not returned.
func (s *SessionService) Close(ctx context.Context, id string) (*CloseResult, error) {
	ds, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.sessions.Delete(id)

	result := &CloseResult{}
	if ds.Owner == nil || s.history == nil {
		return result, nil
	}
	st := ds.search.Snapshot()
	if len(st.Spots) == 0 {
		return result, nil
	}

	resp, err := s.history.CreateGuideHistory(ctx, ds.Owner.BackendToken, ds.historyInput(st, s.now()))
	if err != nil {
		logger.Log.Warn("failed to save detour history",
			zap.String("session_id", id),
			zap.Error(err),
		)
		return result, nil
	}
	result.HistoryID = &resp.ID
	return result, nil
}

// Count returns the number of open sessions.
func (s *SessionService) Count() int {
	return s.sessions.ItemCount()
}

func (s *SessionService) recorder(ds *DetourSession) func(detour.Attempt) {
	return func(a detour.Attempt) {
		if a.Fallback {
			logger.Log.Warn("detour search failed, showing samples",
				zap.String("session_id", ds.ID),
				zap.Int("radius_m", a.RadiusM),
				zap.String("error", a.Error),
			)
		}
		if s.attempts == nil {
			return
		}

		cfg := ds.search.Config()
		rec := &models.AttemptRecord{
			SessionID:   ds.ID,
			Mode:        string(cfg.Mode),
			DurationMin: cfg.DurationMinutes,
			DetourType:  string(detour.ToDetourType(string(cfg.Category))),
			Attempts:    a.Attempts,
			Manual:      a.Manual,
			Widened:     a.Widened,
			RadiusM:     a.RadiusM,
			ResultCount: a.ResultCount,
			Fallback:    a.Fallback,
			Error:       a.Error,
			Seed:        a.Seed,
			CreatedAt:   a.At,
		}
		if ds.Owner != nil {
			rec.UserID = ds.Owner.UserID
		}

		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.attempts.Insert(ctx, rec); err != nil {
			logger.Log.Error("failed to record attempt", zap.String("session_id", ds.ID), zap.Error(err))
		}
	}
}

func (ds *DetourSession) view() *SessionView {
	st := ds.search.Snapshot()

	ds.mu.Lock()
	var pos *Position
	if ds.position != nil {
		p := *ds.position
		pos = &p
	}
	center := ds.center
	ds.mu.Unlock()

	return &SessionView{
		ID:       ds.ID,
		State:    st,
		Cards:    detour.Cards(st.Spots, st.Config.Mode),
		Center:   center,
		Position: pos,
		Playing:  ds.narrator.Playing(),
	}
}

func (ds *DetourSession) historyInput(st detour.State, now time.Time) models.CreateGuideHistoryInput {
	spots := make([]models.HistorySpot, 0, len(st.Spots))
	for _, sp := range st.Spots {
		spots = append(spots, models.HistorySpot{
			ID:       sp.ID,
			Name:     sp.Name,
			Category: string(sp.Category),
			Genre:    sp.Genre,
			Desc:     sp.Desc,
		})
	}

	title := "寄り道"
	if st.Config.Category != "" {
		title = fmt.Sprintf("%sの寄り道", detour.CategoryLabel(st.Config.Category))
	}

	elapsed := int(now.Sub(ds.CreatedAt).Minutes())
	return models.CreateGuideHistoryInput{
		GuideType:   models.GuideDetour,
		Title:       title,
		Subtitle:    "寄り道ガイド",
		StartedAt:   ds.CreatedAt.UTC().Format(time.RFC3339),
		DurationMin: &elapsed,
		SpotsCount:  len(spots),
		Spots:       spots,
		Params: &models.SearchParams{
			Mode:     string(st.Config.Mode),
			Duration: st.Config.DurationMinutes,
			Category: string(st.Config.Category),
			RadiusM:  st.RadiusM,
		},
	}
}
