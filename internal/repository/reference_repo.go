package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/myhometown/missionary-import/internal/models"
)

// CityRepository reads the city reference list.
type CityRepository struct {
	pool *pgxpool.Pool
}

// NewCityRepository creates a new city repository.
func NewCityRepository(pool *pgxpool.Pool) *CityRepository {
	return &CityRepository{pool: pool}
}

// List returns all cities ordered by name.
func (r *CityRepository) List(ctx context.Context) ([]models.City, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, name, state FROM cities ORDER BY name, state`)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.City, error) {
		var c models.City
		err := row.Scan(&c.ID, &c.Name, &c.State)
		return c, err
	})
}

// CommunityRepository reads the community reference list.
type CommunityRepository struct {
	pool *pgxpool.Pool
}

// NewCommunityRepository creates a new community repository.
func NewCommunityRepository(pool *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{pool: pool}
}

// List returns all communities with their parent city id and name.
func (r *CommunityRepository) List(ctx context.Context) ([]models.Community, error) {
	query := `
		SELECT c.id::text, c.name, c.city_id::text, ci.name
		FROM communities c
		JOIN cities ci ON ci.id = c.city_id
		ORDER BY ci.name, c.name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Community, error) {
		var c models.Community
		err := row.Scan(&c.ID, &c.Name, &c.CityID, &c.City)
		return c, err
	})
}

// ReferenceSource serves the reference lists straight from the database.
type ReferenceSource struct {
	CityRepo      *CityRepository
	CommunityRepo *CommunityRepository
}

// Cities returns all cities.
func (s ReferenceSource) Cities(ctx context.Context) ([]models.City, error) {
	return s.CityRepo.List(ctx)
}

// Communities returns all communities.
func (s ReferenceSource) Communities(ctx context.Context) ([]models.Community, error) {
	return s.CommunityRepo.List(ctx)
}
