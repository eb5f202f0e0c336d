package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/myhometown/missionary-import/internal/models"
	"github.com/myhometown/missionary-import/internal/repository"
)

// MissionaryStore reads and bulk-inserts missionaries.
type MissionaryStore interface {
	List(ctx context.Context) ([]models.Missionary, error)
	BulkInsert(ctx context.Context, batchID uuid.UUID, records []models.CanonicalRecord) ([]repository.InsertOutcome, error)
}

// HoursStore aggregates reported hours.
type HoursStore interface {
	TotalsByMissionary(ctx context.Context) (map[uuid.UUID]models.HourTotals, error)
}

// BatchStore persists bulk import batches.
type BatchStore interface {
	Create(ctx context.Context, batch *models.ImportBatch) error
	Complete(ctx context.Context, batch *models.ImportBatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error)
}

// IdempotencyStore claims idempotency keys and releases the claims of
// requests that failed.
type IdempotencyStore interface {
	Claim(ctx context.Context, key, resourceType string, resourceID uuid.UUID) (*repository.IdempotencyResult, error)
	Release(ctx context.Context, key, resourceType string, resourceID uuid.UUID) error
}
