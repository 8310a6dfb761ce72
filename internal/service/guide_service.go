package service

import (
	"context"

	"github.com/serendigo/serendigo-backend-go/internal/models"
)

const (
	defaultRecentLimit = 5
	maxRecentLimit     = 20
)

// GuideBackend is the external visits and destinations API.
type GuideBackend interface {
	RegisterVisit(ctx context.Context, placeID string, userID *string) (*models.VisitResult, error)
	RecentVisits(ctx context.Context, userID string, limit int) ([]models.RecentVisit, error)
	RegisterDestination(ctx context.Context, placeID string) (*models.Destination, error)
}

// GuideService handles visits and destinations
type GuideService struct {
	backend GuideBackend
}

// NewGuideService creates a new guide service
func NewGuideService(backend GuideBackend) *GuideService {
	return &GuideService{backend: backend}
}

// RegisterVisit records a visit and returns its guide. Anonymous visits
// are sent with a null user.
func (s *GuideService) RegisterVisit(ctx context.Context, placeID string, owner *Claims) (*models.VisitResult, error) {
	var userID *string
	if owner != nil {
		userID = &owner.UserID
	}
	return s.backend.RegisterVisit(ctx, placeID, userID)
}

// RecentVisits lists the user's recent destinations.
func (s *GuideService) RecentVisits(ctx context.Context, userID string, limit int) ([]models.RecentVisit, error) {
	if limit < 1 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	visits, err := s.backend.RecentVisits(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if visits == nil {
		visits = []models.RecentVisit{}
	}
	return visits, nil
}

// RegisterDestination registers a chosen destination.
func (s *GuideService) RegisterDestination(ctx context.Context, placeID string) (*models.Destination, error) {
	return s.backend.RegisterDestination(ctx, placeID)
}
