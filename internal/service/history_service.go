package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/serendigo/serendigo-backend-go/internal/detour"
	"github.com/serendigo/serendigo-backend-go/internal/logger"
	"github.com/serendigo/serendigo-backend-go/internal/models"
)

// HistoryDetailMessage is shown when a history record cannot be loaded.
const HistoryDetailMessage = "この履歴の詳細を取得できませんでした。"

// Section labels of the library screen.
const (
	SectionToday     = "今日"
	SectionYesterday = "昨日"
	SectionWeek      = "一週間前"
)

// ErrHistoryDetail wraps any failure loading a history record.
var ErrHistoryDetail = errors.New(HistoryDetailMessage)

// ErrNoSearchParams is returned when a record cannot be searched again.
var ErrNoSearchParams = errors.New("history record has no search conditions")

// HistoryBackend is the external guide-history API.
type HistoryBackend interface {
	GuideHistory(ctx context.Context, token string) (*models.HistoryResponse, error)
	GuideHistoryDetail(ctx context.Context, token string, id int64) (*models.HistoryDetail, error)
}

// HistoryDetailView is one record ready for the detail screen.
type HistoryDetailView struct {
	models.HistoryDetail
	Badge     string                `json:"badge"`
	Narration string                `json:"narration"`
	Repeat    *detour.SessionConfig `json:"repeat,omitempty"`
}

// HistoryService builds the library screens
type HistoryService struct {
	backend  HistoryBackend
	sessions *SessionService
	now      func() time.Time
}

// NewHistoryService creates a new history service
func NewHistoryService(backend HistoryBackend, sessions *SessionService) *HistoryService {
	return &HistoryService{backend: backend, sessions: sessions, now: time.Now}
}

// List returns the sectioned history. Any backend failure yields an empty
// view with zero counters.
func (s *HistoryService) List(ctx context.Context, owner *Claims) models.HistoryView {
	resp, err := s.backend.GuideHistory(ctx, owner.BackendToken)
	if err != nil {
		logger.Log.Warn("failed to fetch guide history", zap.String("user_id", owner.UserID), zap.Error(err))
	}
	if err != nil || resp == nil {
		resp = &models.HistoryResponse{}
	}
	return BuildHistoryView(resp, s.now())
}

// Detail loads one record.
func (s *HistoryService) Detail(ctx context.Context, owner *Claims, id int64) (*HistoryDetailView, error) {
	d, err := s.backend.GuideHistoryDetail(ctx, owner.BackendToken, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryDetail, err)
	}

	view := &HistoryDetailView{
		HistoryDetail: *d,
		Badge:         badge(d.GuideType, d.Subtitle),
		Narration:     HistoryNarration(d),
	}
	if cfg, ok := repeatConfig(d.Params); ok {
		view.Repeat = &cfg
	}
	return view, nil
}

// Repeat opens a new detour session with a record's search conditions,
// searching around origin when given.
func (s *HistoryService) Repeat(ctx context.Context, owner *Claims, id int64, origin *detour.Coordinate) (*SessionView, error) {
	d, err := s.backend.GuideHistoryDetail(ctx, owner.BackendToken, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryDetail, err)
	}
	cfg, ok := repeatConfig(d.Params)
	if !ok {
		return nil, ErrNoSearchParams
	}
	cfg.Origin = origin
	return s.sessions.Create(ctx, cfg, owner)
}

// BuildHistoryView groups days into today, yesterday and two to seven days
// ago by UTC calendar day. Older and unparseable days are dropped.
func BuildHistoryView(resp *models.HistoryResponse, now time.Time) models.HistoryView {
	today := utcDay(now)
	buckets := map[string][]models.HistoryItem{}

	for _, day := range resp.Days {
		d, ok := parseDay(day.Date)
		if !ok {
			continue
		}
		label := ""
		switch diff := int(today.Sub(d).Hours() / 24); {
		case diff == 0:
			label = SectionToday
		case diff == 1:
			label = SectionYesterday
		case diff >= 2 && diff <= 7:
			label = SectionWeek
		default:
			continue
		}
		for _, it := range day.Items {
			it.Subtitle = badge(it.GuideType, it.Subtitle)
			buckets[label] = append(buckets[label], it)
		}
	}

	view := models.HistoryView{Summary: resp.Summary, Empty: true}
	for _, label := range []string{SectionToday, SectionYesterday, SectionWeek} {
		items := buckets[label]
		if items == nil {
			items = []models.HistoryItem{}
		}
		if len(items) > 0 {
			view.Empty = false
		}
		view.Sections = append(view.Sections, models.HistorySection{Label: label, Items: items})
	}
	return view
}

// HistoryNarration is the spoken summary of a record.
func HistoryNarration(d *models.HistoryDetail) string {
	duration := ""
	if d.DurationMin != nil {
		duration = fmt.Sprint(*d.DurationMin)
	}
	return fmt.Sprintf("%s。%s。所要は%s分、%dスポットです。", d.Title, d.Description, duration, d.SpotsCount)
}

func badge(t models.GuideType, subtitle string) string {
	if subtitle != "" {
		return subtitle
	}
	if t == models.GuideTalk {
		return "おしゃべり旅ガイド"
	}
	return "寄り道ガイド"
}

func repeatConfig(p *models.SearchParams) (detour.SessionConfig, bool) {
	if p == nil {
		return detour.SessionConfig{}, false
	}
	mode, ok := detour.ParseMode(p.Mode)
	if !ok || !detour.ValidDuration(p.Duration) {
		return detour.SessionConfig{}, false
	}
	cat, _ := detour.ParseCategory(p.Category)
	return detour.SessionConfig{Mode: mode, DurationMinutes: p.Duration, Category: cat}, true
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDay(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return utcDay(t), true
		}
	}
	return time.Time{}, false
}
