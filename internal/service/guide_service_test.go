package service

import (
	"context"
	"testing"

	"github.com/serendigo/serendigo-backend-go/internal/models"
)

type stubGuideBackend struct {
	userID *string
	limit  int
}

func (b *stubGuideBackend) RegisterVisit(_ context.Context, placeID string, userID *string) (*models.VisitResult, error) {
	b.userID = userID
	return &models.VisitResult{Guide: models.Guide{Text: "guide for " + placeID}}, nil
}

func (b *stubGuideBackend) RecentVisits(_ context.Context, userID string, limit int) ([]models.RecentVisit, error) {
	b.limit = limit
	return nil, nil
}

func (b *stubGuideBackend) RegisterDestination(_ context.Context, placeID string) (*models.Destination, error) {
	return &models.Destination{PlaceID: placeID}, nil
}

func TestGuideService_RegisterVisit(t *testing.T) {
	backend := &stubGuideBackend{}
	svc := NewGuideService(backend)

	res, err := svc.RegisterVisit(context.Background(), "p1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Guide.Text != "guide for p1" || backend.userID != nil {
		t.Errorf("anonymous visit: %+v user=%v", res, backend.userID)
	}

	svc.RegisterVisit(context.Background(), "p1", &Claims{UserID: "u9"})
	if backend.userID == nil || *backend.userID != "u9" {
		t.Errorf("user id not relayed: %v", backend.userID)
	}
}

func TestGuideService_RecentVisitsLimit(t *testing.T) {
	backend := &stubGuideBackend{}
	svc := NewGuideService(backend)

	cases := []struct{ in, want int }{{0, 5}, {3, 3}, {100, 20}}
	for _, c := range cases {
		visits, err := svc.RecentVisits(context.Background(), "u", c.in)
		if err != nil {
			t.Fatal(err)
		}
		if visits == nil {
			t.Error("expected a non-nil slice")
		}
		if backend.limit != c.want {
			t.Errorf("limit %d: got %d, want %d", c.in, backend.limit, c.want)
		}
	}
}
