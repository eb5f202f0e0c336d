package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/myhometown/missionary-import/internal/api/middleware"
	"github.com/myhometown/missionary-import/internal/config"
	"github.com/myhometown/missionary-import/internal/models"
	"github.com/myhometown/missionary-import/internal/refdata"
	"github.com/myhometown/missionary-import/internal/repository"
)

var (
	provoID        = "6f1c2a7e-0d4b-4b7e-9a51-2f8d3c1e0a01"
	ogdenID        = "6f1c2a7e-0d4b-4b7e-9a51-2f8d3c1e0a02"
	oremID         = "6f1c2a7e-0d4b-4b7e-9a51-2f8d3c1e0a03"
	downtownOgden  = "9b3e4d10-5c2a-4f6e-8d71-0a1b2c3d4e01"
	downtownOrem   = "9b3e4d10-5c2a-4f6e-8d71-0a1b2c3d4e02"
	errStoreFailed = errors.New("connection reset")
)

func testReference() refdata.Static {
	return refdata.Static{
		CityList: []models.City{
			{ID: provoID, Name: "Provo"},
			{ID: ogdenID, Name: "Ogden"},
			{ID: oremID, Name: "Orem"},
		},
		CommunityList: []models.Community{
			{ID: downtownOgden, Name: "Downtown", CityID: ogdenID},
			{ID: downtownOrem, Name: "Downtown", CityID: oremID},
		},
	}
}

type failingReference struct{ refdata.Static }

func (failingReference) Cities(context.Context) ([]models.City, error) {
	return nil, errStoreFailed
}

func testConfig() *config.Config {
	return &config.Config{
		Upload: config.UploadConfig{MaxFileSize: 1 << 20, MaxRows: 10},
	}
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationMiddleware())
	return r
}

type fakeMissionaries struct {
	mu       sync.Mutex
	existing map[string]bool
	inserted []models.CanonicalRecord
	listed   []models.Missionary
	err      error
}

func newFakeMissionaries(existing ...string) *fakeMissionaries {
	f := &fakeMissionaries{existing: map[string]bool{}}
	for _, e := range existing {
		f.existing[strings.ToLower(e)] = true
	}
	return f
}

func (f *fakeMissionaries) List(context.Context) ([]models.Missionary, error) {
	return f.listed, f.err
}

func (f *fakeMissionaries) BulkInsert(_ context.Context, _ uuid.UUID, records []models.CanonicalRecord) ([]repository.InsertOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	outcomes := make([]repository.InsertOutcome, len(records))
	for i, rec := range records {
		if f.existing[rec.Email] {
			outcomes[i].Duplicate = true
			continue
		}
		f.existing[rec.Email] = true
		f.inserted = append(f.inserted, rec)
		outcomes[i].ID = uuid.New()
	}
	return outcomes, nil
}

type fakeHours struct {
	totals map[uuid.UUID]models.HourTotals
}

func (f fakeHours) TotalsByMissionary(context.Context) (map[uuid.UUID]models.HourTotals, error) {
	return f.totals, nil
}

type fakeBatches struct {
	mu      sync.Mutex
	batches map[uuid.UUID]models.ImportBatch
}

func newFakeBatches() *fakeBatches {
	return &fakeBatches{batches: map[uuid.UUID]models.ImportBatch{}}
}

func (f *fakeBatches) Create(_ context.Context, batch *models.ImportBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *batch
	if len(stored.Response) == 0 {
		stored.Response = []byte("{}")
	}
	f.batches[batch.ID] = stored
	return nil
}

func (f *fakeBatches) Complete(_ context.Context, batch *models.ImportBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches[batch.ID] = *batch
	return nil
}

func (f *fakeBatches) GetByID(_ context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.batches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

type fakeIdempotency struct {
	mu   sync.Mutex
	keys map[string]uuid.UUID
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{keys: map[string]uuid.UUID{}}
}

func (f *fakeIdempotency) Claim(_ context.Context, key, resourceType string, resourceID uuid.UUID) (*repository.IdempotencyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := resourceType + "/" + key
	if id, ok := f.keys[k]; ok {
		return &repository.IdempotencyResult{AlreadyExists: true, ResourceID: id}, nil
	}
	f.keys[k] = resourceID
	return &repository.IdempotencyResult{ResourceID: resourceID}, nil
}

func (f *fakeIdempotency) Release(_ context.Context, key, resourceType string, resourceID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := resourceType + "/" + key
	if f.keys[k] == resourceID {
		delete(f.keys, k)
	}
	return nil
}
