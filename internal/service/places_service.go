package service

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/serendigo/serendigo-backend-go/internal/models"
)

// PredictionLimit is how many candidates the destination screen shows.
const PredictionLimit = 5

// ErrMissingInput is returned for an empty autocomplete query.
var ErrMissingInput = errors.New("missing input parameter")

// DestinationTypes are the place types accepted as a destination.
var DestinationTypes = []string{
	"tourist_attraction",
	"park",
	"museum",
	"natural_feature",
	"point_of_interest",
	"establishment",
}

// PredictionSource returns autocomplete candidates.
type PredictionSource interface {
	Predictions(ctx context.Context, input string, limit int) ([]models.Prediction, error)
}

// DetailsSource returns the types of a place.
type DetailsSource interface {
	PlaceDetails(ctx context.Context, placeID string) (*models.PlaceDetails, error)
}

// PlacesService answers destination autocomplete.
type PlacesService struct {
	source  PredictionSource
	details DetailsSource
	cache   *cache.Cache
	maxConc int
}

// NewPlacesService creates the service. When details is nil candidates
// are returned unfiltered.
func NewPlacesService(source PredictionSource, details DetailsSource, detailsTTL time.Duration) *PlacesService {
	return &PlacesService{
		source:  source,
		details: details,
		cache:   cache.New(detailsTTL, 2*detailsTTL),
		maxConc: PredictionLimit,
	}
}

// Predictions returns candidates whose place types make them a valid
// destination. A failed details lookup fails the whole request.
func (s *PlacesService) Predictions(ctx context.Context, input string) ([]models.Prediction, error) {
	if input == "" {
		return nil, ErrMissingInput
	}

	preds, err := s.source.Predictions(ctx, input, PredictionLimit)
	if err != nil {
		return nil, err
	}
	if s.details == nil {
		return preds, nil
	}

	keep := make([]bool, len(preds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConc)
	for i, p := range preds {
		i, p := i, p
		g.Go(func() error {
			types, err := s.placeTypes(gctx, p.PlaceID)
			if err != nil {
				return err
			}
			keep[i] = validDestination(types)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	filtered := make([]models.Prediction, 0, len(preds))
	for i, p := range preds {
		if keep[i] {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *PlacesService) placeTypes(ctx context.Context, placeID string) ([]string, error) {
	if v, ok := s.cache.Get(placeID); ok {
		return v.([]string), nil
	}
	d, err := s.details.PlaceDetails(ctx, placeID)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(placeID, d.Types)
	return d.Types, nil
}

func validDestination(types []string) bool {
	for _, t := range types {
		for _, ok := range DestinationTypes {
			if t == ok {
				return true
			}
		}
	}
	return false
}
