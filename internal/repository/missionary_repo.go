package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/myhometown/missionary-import/internal/models"
)

// MissionaryRepository handles data access for missionaries.
type MissionaryRepository struct {
	pool *pgxpool.Pool
}

// NewMissionaryRepository creates a new missionary repository.
func NewMissionaryRepository(pool *pgxpool.Pool) *MissionaryRepository {
	return &MissionaryRepository{pool: pool}
}

// missionaryColumns is the canonical column list for missionaries, used across all queries.
const missionaryColumns = `id, first_name, last_name, email, contact_number, assignment_status,
	assignment_level, person_type, gender, city_id, community_id, "group", title,
	position_detail, start_date, end_date, duration, street_address, address_city,
	address_state, zip_code, home_stake, notes, import_batch_id, created_at, updated_at`

func scanMissionary(row pgx.Row, m *models.Missionary) error {
	return row.Scan(
		&m.ID,
		&m.FirstName,
		&m.LastName,
		&m.Email,
		&m.ContactNumber,
		&m.AssignmentStatus,
		&m.AssignmentLevel,
		&m.PersonType,
		&m.Gender,
		&m.CityID,
		&m.CommunityID,
		&m.Group,
		&m.Title,
		&m.PositionDetail,
		&m.StartDate,
		&m.EndDate,
		&m.Duration,
		&m.StreetAddress,
		&m.AddressCity,
		&m.AddressState,
		&m.ZipCode,
		&m.HomeStake,
		&m.Notes,
		&m.ImportBatchID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

// List returns every missionary ordered by last and first name.
func (r *MissionaryRepository) List(ctx context.Context) ([]models.Missionary, error) {
	query := `SELECT ` + missionaryColumns + ` FROM missionaries ORDER BY last_name, first_name, email`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list missionaries: %w", err)
	}
	defer rows.Close()

	var missionaries []models.Missionary
	for rows.Next() {
		var m models.Missionary
		if err := scanMissionary(rows, &m); err != nil {
			return nil, err
		}
		missionaries = append(missionaries, m)
	}
	return missionaries, rows.Err()
}

// InsertOutcome is the result of inserting one record of a bulk request.
type InsertOutcome struct {
	ID uuid.UUID
	// Duplicate is set when a missionary with the same email already existed
	// and nothing was inserted.
	Duplicate bool
}

// BulkInsert inserts records in one transaction, tagging each row with
// batchID. Records whose email already exists are skipped and reported as
// duplicates; the outcomes are in the order of records.
func (r *MissionaryRepository) BulkInsert(
	ctx context.Context,
	batchID uuid.UUID,
	records []models.CanonicalRecord,
) ([]InsertOutcome, error) {
	if len(records) == 0 {
		return nil, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin bulk insert: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO missionaries (
			first_name, last_name, email, contact_number, assignment_status,
			assignment_level, person_type, gender, city_id, community_id, "group",
			title, position_detail, start_date, end_date, duration, street_address,
			address_city, address_state, zip_code, home_stake, notes, import_batch_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		ON CONFLICT (email) DO NOTHING
		RETURNING id
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			query,
			rec.FirstName, rec.LastName, rec.Email, rec.ContactNumber, rec.AssignmentStatus,
			rec.AssignmentLevel, rec.PersonType, rec.Gender, rec.CityID, rec.CommunityID, rec.Group,
			rec.Title, rec.PositionDetail, rec.StartDate, rec.EndDate, rec.Duration, rec.StreetAddress,
			rec.AddressCity, rec.AddressState, rec.ZipCode, rec.HomeStake, rec.Notes, batchID,
		)
	}

	results := tx.SendBatch(ctx, batch)
	outcomes := make([]InsertOutcome, len(records))
	for i := range records {
		var id uuid.UUID
		err := results.QueryRow().Scan(&id)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			outcomes[i].Duplicate = true
		case err != nil:
			results.Close()
			return nil, fmt.Errorf("insert record %d: %w", i, err)
		default:
			outcomes[i].ID = id
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("close bulk insert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit bulk insert: %w", err)
	}
	return outcomes, nil
}
