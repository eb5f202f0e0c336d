package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/myhometown/missionary-import/internal/models"
)

// HoursRepository handles reported service hours.
type HoursRepository struct {
	pool *pgxpool.Pool
}

// NewHoursRepository creates a new hours repository.
func NewHoursRepository(pool *pgxpool.Pool) *HoursRepository {
	return &HoursRepository{pool: pool}
}

// TotalsByMissionary sums hours per missionary. Missionaries without any
// entry are absent from the map.
func (r *HoursRepository) TotalsByMissionary(ctx context.Context) (map[uuid.UUID]models.HourTotals, error) {
	query := `
		SELECT missionary_id, COALESCE(SUM(hours), 0)::float8, COUNT(*)
		FROM missionary_hours
		GROUP BY missionary_id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sum hours: %w", err)
	}
	defer rows.Close()

	totals := make(map[uuid.UUID]models.HourTotals)
	for rows.Next() {
		var t models.HourTotals
		if err := rows.Scan(&t.MissionaryID, &t.TotalHours, &t.Entries); err != nil {
			return nil, err
		}
		totals[t.MissionaryID] = t
	}
	return totals, rows.Err()
}
