package refdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/myhometown/missionary-import/internal/location"
	"github.com/myhometown/missionary-import/internal/models"
)

// ErrUnavailable wraps every failure to fetch a reference list.
var ErrUnavailable = errors.New("failed to load reference data")

// Source provides the city and community reference lists.
type Source interface {
	Cities(ctx context.Context) ([]models.City, error)
	Communities(ctx context.Context) ([]models.Community, error)
}

// Load fetches both reference lists concurrently and indexes them. If
// either fetch fails, Load fails; no index is built from a partial result.
func Load(ctx context.Context, src Source) (*location.Index, error) {
	var (
		cities      []models.City
		communities []models.Community
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		cities, err = src.Cities(egCtx)
		if err != nil {
			return fmt.Errorf("cities: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		communities, err = src.Communities(egCtx)
		if err != nil {
			return fmt.Errorf("communities: %w", err)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	slog.Debug("reference data loaded",
		slog.Int("cities", len(cities)),
		slog.Int("communities", len(communities)))

	return location.NewIndex(cities, communities), nil
}

// Static is a Source over lists already in memory.
type Static struct {
	CityList      []models.City
	CommunityList []models.Community
}

// Cities returns the static city list.
func (s Static) Cities(context.Context) ([]models.City, error) { return s.CityList, nil }

// Communities returns the static community list.
func (s Static) Communities(context.Context) ([]models.Community, error) {
	return s.CommunityList, nil
}
