package detour

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrBusy is returned when a fetch is already in flight for the session.
var ErrBusy = errors.New("detour: search already in progress")

// seedRange bounds the random seed sent with every query.
const seedRange = 1_000_000

// Query is one recommendation request.
type Query struct {
	Mode       Mode
	Minutes    int
	DetourType DetourType
	Lat        float64
	Lng        float64
	RadiusM    int
	ExcludeIDs []string
	Seed       int
}

// Recommender performs the recommendation call against the backend.
type Recommender interface {
	Search(ctx context.Context, q Query) ([]map[string]any, error)
}

// SessionConfig is fixed when the detour screen is entered.
type SessionConfig struct {
	Mode            Mode        `json:"mode"`
	DurationMinutes int         `json:"duration_min"`
	Category        Category    `json:"category,omitempty"`
	Origin          *Coordinate `json:"origin,omitempty"`
	Profile         *Profile    `json:"profile,omitempty"`
}

// Ready reports whether mode and duration are resolved. Fetches are
// skipped until they are.
func (c SessionConfig) Ready() bool {
	_, okMode := ParseMode(string(c.Mode))
	return okMode && ValidDuration(c.DurationMinutes)
}

// Center is the search origin, DefaultOrigin when none was given.
func (c SessionConfig) Center() Coordinate {
	if c.Origin == nil {
		return DefaultOrigin
	}
	return *c.Origin
}

// Phase is the fetch lifecycle of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseFetching:
		return "fetching"
	case PhaseSettled:
		return "settled"
	}
	return "idle"
}

// MarshalText renders the phase by name in JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Attempt describes one completed fetch.
type Attempt struct {
	Attempts    int
	Manual      bool
	Widened     bool
	RadiusM     int
	ResultCount int
	Fallback    bool
	Error       string
	Seed        int
	At          time.Time
}

// State is a point-in-time copy of a session for rendering.
type State struct {
	Config        SessionConfig `json:"config"`
	RadiusM       int           `json:"radius_m"`
	ExcludeIDs    []string      `json:"exclude_ids"`
	Attempts      int           `json:"attempts"`
	Spots         []Spot        `json:"spots"`
	Phase         Phase         `json:"phase"`
	Loading       bool          `json:"loading"`
	Error         string        `json:"error,omitempty"`
	NextWillWiden bool          `json:"next_will_widen"`
}

// Option configures a Session.
type Option func(*Session)

// WithSeedSource replaces the random seed source.
func WithSeedSource(fn func() int) Option {
	return func(s *Session) { s.seed = fn }
}

// WithObserver registers a callback invoked after every completed fetch.
func WithObserver(fn func(Attempt)) Option {
	return func(s *Session) { s.observe = fn }
}

// WithClock replaces time.Now for attempt timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Session) { s.now = fn }
}

// Session is the detour search state machine for one screen instance.
type Session struct {
	mu sync.Mutex

	cfg     SessionConfig
	rec     Recommender
	seed    func() int
	observe func(Attempt)
	now     func() time.Time

	radius     int
	excludeIDs []string
	excluded   map[string]struct{}
	attempts   int
	spots      []Spot
	phase      Phase
	loading    bool
	errMsg     string
}

// NewSession creates a session in the Idle phase at the base radius.
func NewSession(cfg SessionConfig, rec Recommender, opts ...Option) *Session {
	s := &Session{
		cfg:      cfg,
		rec:      rec,
		seed:     func() int { return rand.Intn(seedRange) },
		now:      time.Now,
		radius:   BaseRadiusM,
		excluded: make(map[string]struct{}),
		spots:    []Spot{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the immutable session configuration.
func (s *Session) Config() SessionConfig {
	return s.cfg
}

// Start runs the automatic initial fetch. It never widens and does not
// count as an attempt.
func (s *Session) Start(ctx context.Context) (State, error) {
	s.mu.Lock()
	if s.loading {
		st := s.snapshotLocked()
		s.mu.Unlock()
		return st, ErrBusy
	}
	q, ok := s.beginLocked(false)
	s.mu.Unlock()

	if ok {
		s.run(ctx, q, false, false)
	}
	return s.Snapshot(), nil
}

// Retry is the user's "find more" action. Whether it widens depends on the
// previous result count and the attempt parity.
func (s *Session) Retry(ctx context.Context) (State, error) {
	s.mu.Lock()
	if s.loading {
		st := s.snapshotLocked()
		s.mu.Unlock()
		return st, ErrBusy
	}
	widen := ShouldWiden(len(s.spots), s.attempts)
	s.attempts++
	q, ok := s.beginLocked(widen)
	s.mu.Unlock()

	if ok {
		s.run(ctx, q, widen, true)
	}
	return s.Snapshot(), nil
}

// Snapshot copies the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	spots := make([]Spot, len(s.spots))
	copy(spots, s.spots)
	ids := make([]string, len(s.excludeIDs))
	copy(ids, s.excludeIDs)

	return State{
		Config:        s.cfg,
		RadiusM:       s.radius,
		ExcludeIDs:    ids,
		Attempts:      s.attempts,
		Spots:         spots,
		Phase:         s.phase,
		Loading:       s.loading,
		Error:         s.errMsg,
		NextWillWiden: ShouldWiden(len(s.spots), s.attempts),
	}
}

// beginLocked marks the session as loading and builds the query.
// It returns false when mode or duration are unresolved.
func (s *Session) beginLocked(widen bool) (Query, bool) {
	if !s.cfg.Ready() {
		return Query{}, false
	}
	s.loading = true
	s.phase = PhaseFetching
	s.errMsg = ""

	ids := make([]string, len(s.excludeIDs))
	copy(ids, s.excludeIDs)
	center := s.cfg.Center()

	return Query{
		Mode:       s.cfg.Mode,
		Minutes:    s.cfg.DurationMinutes,
		DetourType: ToDetourType(string(s.cfg.Category)),
		Lat:        center.Lat,
		Lng:        center.Lng,
		RadiusM:    EffectiveRadius(s.radius, widen),
		ExcludeIDs: ids,
		Seed:       s.seed(),
	}, true
}

func (s *Session) run(ctx context.Context, q Query, widen, manual bool) {
	raws, err := s.rec.Search(ctx, q)

	s.mu.Lock()
	attempt := Attempt{
		Attempts: s.attempts,
		Manual:   manual,
		Widened:  widen,
		RadiusM:  q.RadiusM,
		Seed:     q.Seed,
		At:       s.now(),
	}
	if err != nil {
		s.errMsg = FailureMessage(err)
		s.replaceSpotsLocked(FallbackSpots())
		attempt.Fallback = true
		attempt.Error = err.Error()
	} else {
		if widen {
			s.radius += WidenStepM
		}
		s.replaceSpotsLocked(NormalizeAll(raws))
	}
	attempt.ResultCount = len(s.spots)
	s.loading = false
	s.phase = PhaseSettled
	observe := s.observe
	s.mu.Unlock()

	if observe != nil {
		observe(attempt)
	}
}

func (s *Session) replaceSpotsLocked(spots []Spot) {
	s.spots = spots
	for _, sp := range spots {
		if sp.ID == "" {
			continue
		}
		if _, ok := s.excluded[sp.ID]; ok {
			continue
		}
		s.excluded[sp.ID] = struct{}{}
		s.excludeIDs = append(s.excludeIDs, sp.ID)
	}
}
