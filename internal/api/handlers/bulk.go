package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/myhometown/missionary-import/internal/api/middleware"
	"github.com/myhometown/missionary-import/internal/api/response"
	"github.com/myhometown/missionary-import/internal/config"
	"github.com/myhometown/missionary-import/internal/location"
	"github.com/myhometown/missionary-import/internal/models"
	"github.com/myhometown/missionary-import/internal/refdata"
	"github.com/myhometown/missionary-import/internal/repository"
)

// Validate checks bulk records against their struct tags and reports
// fields by their JSON names.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// BulkHandler handles POST /api/database/missionaries/bulk.
type BulkHandler struct {
	reference    refdata.Source
	missionaries MissionaryStore
	batches      BatchStore
	idempotency  IdempotencyStore
	cfg          *config.Config
}

// NewBulkHandler creates a new bulk handler.
func NewBulkHandler(
	reference refdata.Source,
	missionaries MissionaryStore,
	batches BatchStore,
	idempotency IdempotencyStore,
	cfg *config.Config,
) *BulkHandler {
	return &BulkHandler{
		reference:    reference,
		missionaries: missionaries,
		batches:      batches,
		idempotency:  idempotency,
		cfg:          cfg,
	}
}

// HandleBulk validates every record, inserts the valid ones and skips
// emails that already exist. The body is the bulk response itself, not an
// envelope. With an Idempotency-Key header a repeated request returns the
// stored response of the first one; a failed request releases its key so
// it can be retried.
func (h *BulkHandler) HandleBulk(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.Logger(c)

	var req models.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid JSON payload: "+err.Error(), nil)
		return
	}
	if len(req.Missionaries) == 0 {
		response.BadRequest(c, "missionaries must contain at least one record", nil)
		return
	}
	if limit := h.cfg.Upload.MaxRows; limit > 0 && len(req.Missionaries) > limit {
		response.TooLarge(c, "TOO_MANY_RECORDS",
			fmt.Sprintf("a bulk request may contain at most %d records", limit))
		return
	}

	var done bool
	batchID := uuid.New()
	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey != "" {
		claim, err := h.idempotency.Claim(ctx, idempotencyKey, repository.ResourceImportBatch, batchID)
		if err != nil {
			logger.Error("idempotency check failed", slog.String("error", err.Error()))
			response.InternalError(c, "idempotency check failed")
			return
		}
		if claim.AlreadyExists {
			h.replay(c, claim.ResourceID)
			return
		}
		defer func() {
			if done {
				return
			}
			if err := h.idempotency.Release(context.WithoutCancel(ctx), idempotencyKey, repository.ResourceImportBatch, batchID); err != nil {
				logger.Warn("failed to release idempotency key",
					slog.String("batch_id", batchID.String()),
					slog.String("error", err.Error()))
			}
		}()
	}

	idx, err := refdata.Load(ctx, h.reference)
	if err != nil {
		logger.Error("failed to load reference data", slog.String("error", err.Error()))
		response.InternalError(c, "failed to load reference data")
		return
	}

	var (
		valid []models.CanonicalRecord
		resp  = models.BulkResponse{Duplicates: []models.Duplicate{}, Invalid: []models.BulkInvalid{}}
	)
	for i, rec := range req.Missionaries {
		rec.Email = strings.ToLower(strings.TrimSpace(rec.Email))
		if errs := checkRecord(&rec, idx); len(errs) > 0 {
			resp.Invalid = append(resp.Invalid, models.BulkInvalid{Index: i, Email: rec.Email, Errors: errs})
			continue
		}
		valid = append(valid, rec)
	}

	batch := &models.ImportBatch{
		ID:          batchID,
		RecordCount: len(req.Missionaries),
		CreatedAt:   time.Now(),
	}
	if userID, ok := c.Get("user_id"); ok {
		if id, ok := userID.(uuid.UUID); ok {
			batch.SubmittedBy = &id
		}
	}
	if idempotencyKey != "" {
		batch.IdempotencyKey = &idempotencyKey
	}
	if err := h.batches.Create(ctx, batch); err != nil {
		logger.Error("failed to create import batch", slog.String("error", err.Error()))
		response.InternalError(c, "failed to create import batch")
		return
	}

	if len(valid) > 0 {
		outcomes, err := h.missionaries.BulkInsert(ctx, batchID, valid)
		if err != nil {
			logger.Error("bulk insert failed",
				slog.String("batch_id", batchID.String()),
				slog.String("error", err.Error()))
			response.InternalError(c, "failed to insert missionaries")
			return
		}
		for i, outcome := range outcomes {
			if outcome.Duplicate {
				resp.Duplicates = append(resp.Duplicates, models.Duplicate{
					Email: valid[i].Email,
					Name:  valid[i].FullName(),
				})
				continue
			}
			resp.Summary.Inserted++
		}
	}

	body, err := json.Marshal(resp)
	if err != nil {
		response.InternalError(c, "failed to encode response")
		return
	}
	batch.Inserted = resp.Summary.Inserted
	batch.Duplicates = len(resp.Duplicates)
	batch.Invalid = len(resp.Invalid)
	batch.Response = body
	if err := h.batches.Complete(ctx, batch); err != nil {
		// The records are in. Without a stored response the key cannot
		// replay, so it is released and a retry reports them as duplicates.
		logger.Warn("failed to store import batch outcome",
			slog.String("batch_id", batchID.String()),
			slog.String("error", err.Error()))
	} else {
		done = true
	}

	logger.Info("bulk import processed",
		slog.String("batch_id", batchID.String()),
		slog.Int("records", len(req.Missionaries)),
		slog.Int("inserted", resp.Summary.Inserted),
		slog.Int("duplicates", len(resp.Duplicates)),
		slog.Int("invalid", len(resp.Invalid)))

	c.Header("X-Import-Batch-ID", batchID.String())
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *BulkHandler) replay(c *gin.Context, batchID uuid.UUID) {
	batch, err := h.batches.GetByID(c.Request.Context(), batchID)
	if err != nil {
		response.InternalError(c, "failed to load import batch")
		return
	}
	if batch == nil || len(batch.Response) == 0 || string(batch.Response) == "{}" {
		response.Conflict(c, "IN_PROGRESS",
			"a request with this Idempotency-Key is still being processed", gin.H{"batch_id": batchID})
		return
	}

	middleware.Logger(c).Info("replaying bulk import response", slog.String("batch_id", batchID.String()))
	c.Header("X-Import-Batch-ID", batchID.String())
	c.Header("Idempotent-Replayed", "true")
	c.Data(http.StatusOK, "application/json; charset=utf-8", batch.Response)
}

// checkRecord returns every problem with rec: struct tag violations, then
// assignment consistency against the reference data. State records carry no
// location ids and city records no community_id. A community-level record
// without city_id gets its community's city.
func checkRecord(rec *models.CanonicalRecord, idx *location.Index) []string {
	var errs []string
	if err := Validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []string{err.Error()}
		}
		for _, fe := range verrs {
			errs = append(errs, fieldMessage(fe))
		}
	}

	switch rec.AssignmentLevel {
	case models.LevelState:
		if rec.CityID != nil {
			errs = append(errs, "city_id must be empty for state-level assignments")
		}
		if rec.CommunityID != nil {
			errs = append(errs, "community_id must be empty for state-level assignments")
		}
	case models.LevelCity:
		if rec.CommunityID != nil {
			errs = append(errs, "community_id must be empty for city-level assignments")
		}
		if rec.CityID == nil {
			errs = append(errs, "city_id is required for city-level assignments")
		} else if _, ok := idx.City(*rec.CityID); !ok {
			errs = append(errs, fmt.Sprintf("city_id '%s' does not exist", *rec.CityID))
		}
	case models.LevelCommunity:
		if rec.CommunityID == nil {
			errs = append(errs, "community_id is required for community-level assignments")
			break
		}
		_, parent, ok := idx.Community(*rec.CommunityID)
		if !ok {
			errs = append(errs, fmt.Sprintf("community_id '%s' does not exist", *rec.CommunityID))
		} else if rec.CityID != nil && *rec.CityID != parent {
			errs = append(errs, fmt.Sprintf("community_id '%s' does not belong to city_id '%s'", *rec.CommunityID, *rec.CityID))
		} else if rec.CityID == nil && parent != "" {
			rec.CityID = &parent
		}
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fmt.Sprintf("%s '%v' is not a valid email address", fe.Field(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid":
		return fe.Field() + " must be a UUID"
	default:
		return fmt.Sprintf("%s failed '%s' validation", fe.Field(), fe.Tag())
	}
}
