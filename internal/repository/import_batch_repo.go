package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/myhometown/missionary-import/internal/models"
)

// ImportBatchRepository handles data access for bulk import batches.
type ImportBatchRepository struct {
	pool *pgxpool.Pool
}

// NewImportBatchRepository creates a new import batch repository.
func NewImportBatchRepository(pool *pgxpool.Pool) *ImportBatchRepository {
	return &ImportBatchRepository{pool: pool}
}

// importBatchColumns is the canonical column list for import_batches, used across all queries.
const importBatchColumns = `id, submitted_by, record_count, inserted, duplicates, invalid,
	idempotency_key, response, created_at`

func scanImportBatch(row pgx.Row, b *models.ImportBatch) error {
	return row.Scan(
		&b.ID,
		&b.SubmittedBy,
		&b.RecordCount,
		&b.Inserted,
		&b.Duplicates,
		&b.Invalid,
		&b.IdempotencyKey,
		&b.Response,
		&b.CreatedAt,
	)
}

// Create inserts a new batch. An empty Response is stored as {}.
func (r *ImportBatchRepository) Create(ctx context.Context, batch *models.ImportBatch) error {
	if batch == nil {
		return errors.New("import batch cannot be nil")
	}
	if len(batch.Response) == 0 {
		batch.Response = []byte("{}")
	}

	query := `
		INSERT INTO import_batches (
			id, submitted_by, record_count, inserted, duplicates, invalid,
			idempotency_key, response, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING ` + importBatchColumns

	return scanImportBatch(r.pool.QueryRow(
		ctx, query,
		batch.ID, batch.SubmittedBy, batch.RecordCount, batch.Inserted, batch.Duplicates,
		batch.Invalid, batch.IdempotencyKey, batch.Response, batch.CreatedAt,
	), batch)
}

// Complete stores the outcome counters and response body of a batch.
func (r *ImportBatchRepository) Complete(ctx context.Context, batch *models.ImportBatch) error {
	if batch == nil {
		return errors.New("import batch cannot be nil")
	}

	query := `
		UPDATE import_batches
		SET inserted = $2, duplicates = $3, invalid = $4, response = $5
		WHERE id = $1
		RETURNING ` + importBatchColumns

	err := scanImportBatch(r.pool.QueryRow(
		ctx, query,
		batch.ID, batch.Inserted, batch.Duplicates, batch.Invalid, batch.Response,
	), batch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.New("import batch not found")
		}
		return err
	}
	return nil
}

// GetByID retrieves a batch by ID. Returns nil, nil if no match found.
func (r *ImportBatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	query := `SELECT ` + importBatchColumns + ` FROM import_batches WHERE id = $1`
	batch := &models.ImportBatch{}
	err := scanImportBatch(r.pool.QueryRow(ctx, query, id), batch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return batch, nil
}
