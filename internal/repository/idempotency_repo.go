package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResourceImportBatch is the resource type of keys claimed by bulk imports.
const ResourceImportBatch = "import_batch"

// IdempotencyResult holds the outcome of an atomic claim attempt.
type IdempotencyResult struct {
	// AlreadyExists is true when the key was already claimed.
	AlreadyExists bool
	// ResourceID is the resource the key belongs to, existing or newly claimed.
	ResourceID uuid.UUID
}

// IdempotencyRepository handles atomic idempotency key operations.
type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

// NewIdempotencyRepository creates a new idempotency repository.
func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

// Claim atomically binds key to resourceID. When the key (for the same
// resource type) was claimed before and has not expired, it returns
// AlreadyExists=true with the original resource id instead.
func (r *IdempotencyRepository) Claim(
	ctx context.Context,
	key string,
	resourceType string,
	resourceID uuid.UUID,
) (*IdempotencyResult, error) {
	if key == "" {
		return nil, errors.New("idempotency key cannot be empty")
	}

	// Expired keys are released first so they can be claimed again.
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE key = $1 AND resource_type = $2 AND expires_at < NOW()`,
		key, resourceType); err != nil {
		return nil, err
	}

	query := `
		WITH inserted AS (
			INSERT INTO idempotency_keys (key, resource_type, resource_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (key, resource_type) DO NOTHING
			RETURNING resource_id, FALSE AS already_exists
		)
		SELECT resource_id, already_exists FROM inserted
		UNION ALL
		SELECT resource_id, TRUE AS already_exists
		FROM idempotency_keys
		WHERE key = $1 AND resource_type = $2
		  AND NOT EXISTS (SELECT 1 FROM inserted)
	`

	var result IdempotencyResult
	err := r.pool.QueryRow(ctx, query, key, resourceType, resourceID).Scan(
		&result.ResourceID,
		&result.AlreadyExists,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New("unexpected empty result from idempotency claim")
		}
		return nil, err
	}

	return &result, nil
}

// Release drops the claim of key, but only while it still belongs to
// resourceID, so a failed request can be retried with the same key.
func (r *IdempotencyRepository) Release(ctx context.Context, key, resourceType string, resourceID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE key = $1 AND resource_type = $2 AND resource_id = $3`,
		key, resourceType, resourceID)
	return err
}

// CleanExpired removes expired idempotency keys.
func (r *IdempotencyRepository) CleanExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
