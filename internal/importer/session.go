package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/myhometown/missionary-import/internal/ingest"
	"github.com/myhometown/missionary-import/internal/models"
	"github.com/myhometown/missionary-import/internal/refdata"
	"github.com/myhometown/missionary-import/internal/schema"
)

var (
	// ErrNotLoaded is returned by stages that need a parsed file.
	ErrNotLoaded = errors.New("no CSV file loaded")
	// ErrNotValidated is returned by Submit before a successful Validate.
	ErrNotValidated = errors.New("import has not been validated")
	// ErrNothingToSubmit is returned by Submit when no row passed validation.
	ErrNothingToSubmit = errors.New("no valid records to import")
)

// Submitter sends validated records to the backend.
type Submitter interface {
	Submit(ctx context.Context, records []models.CanonicalRecord) (*models.ImportSummary, error)
}

// Session carries one import from file selection to submission:
// parse, map, validate, submit. Loading a new file discards everything
// derived from the previous one.
type Session struct {
	ID       uuid.UUID
	Filename string

	table   *ingest.Table
	mapping schema.Mapping
	result  *models.ImportResult
	summary *models.ImportSummary
	base    *slog.Logger
	logger  *slog.Logger
}

// NewSession creates an empty session. A nil logger uses slog.Default.
func NewSession(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{base: logger, logger: logger}
}

// Load parses the file and computes the automatic field mapping.
// On failure the session is left empty.
func (s *Session) Load(filename string, r io.Reader) error {
	s.reset()
	s.ID = uuid.New()
	s.Filename = filename
	s.logger = s.base.With(slog.String("import_id", s.ID.String()))

	table, err := ingest.ParseFile(filename, r)
	if err != nil {
		s.logger.Warn("import file rejected", slog.String("filename", filename), slog.String("error", err.Error()))
		return err
	}

	s.table = table
	s.mapping = schema.AutoMap(table.Header, schema.Fields)
	s.logger.Info("import file loaded",
		slog.String("filename", filename),
		slog.Int("columns", len(table.Header)),
		slog.Int("rows", len(table.Rows)),
		slog.Int("mapped_fields", len(s.mapping)))
	return nil
}

func (s *Session) reset() {
	s.ID = uuid.Nil
	s.Filename = ""
	s.table = nil
	s.mapping = nil
	s.result = nil
	s.summary = nil
}

// Table returns the parsed file, or nil before Load.
func (s *Session) Table() *ingest.Table { return s.table }

// Mapping returns a copy of the current field mapping.
func (s *Session) Mapping() schema.Mapping {
	return s.mapping.Clone()
}

// SetMapping overrides the column of one field. An empty header unsets it.
// Any previous validation result is discarded.
func (s *Session) SetMapping(key schema.FieldKey, header string) error {
	if s.table == nil {
		return ErrNotLoaded
	}
	if _, ok := schema.Lookup(key); !ok {
		return fmt.Errorf("unknown field '%s'", key)
	}
	if header == "" {
		s.mapping.Clear(key)
	} else {
		s.mapping.Set(key, header)
	}
	s.result = nil
	s.summary = nil
	return nil
}

// MissingFields returns the required fields that still have no column.
func (s *Session) MissingFields() []schema.FieldDef {
	return s.mapping.Missing(schema.Fields)
}

// Validate loads the reference lists from src and validates every row.
// It fails without validating anything when the mapping is incomplete or
// either reference list cannot be loaded.
func (s *Session) Validate(ctx context.Context, src refdata.Source) (*models.ImportResult, error) {
	if s.table == nil {
		return nil, ErrNotLoaded
	}
	if err := s.mapping.Check(s.table.Header, schema.Fields); err != nil {
		return nil, err
	}

	idx, err := refdata.Load(ctx, src)
	if err != nil {
		return nil, err
	}

	result := NewValidator(idx, s.logger).Validate(s.table.Rows, s.mapping)
	s.result = &result
	s.summary = nil
	return s.result, nil
}

// Result returns the last validation result, or nil.
func (s *Session) Result() *models.ImportResult { return s.result }

// Submit sends the valid records of the last validation as one batch.
func (s *Session) Submit(ctx context.Context, submitter Submitter) (*models.ImportSummary, error) {
	if s.table == nil {
		return nil, ErrNotLoaded
	}
	if s.result == nil {
		return nil, ErrNotValidated
	}
	if len(s.result.Valid) == 0 {
		return nil, ErrNothingToSubmit
	}

	summary, err := submitter.Submit(ctx, s.result.Valid)
	if err != nil {
		s.logger.Error("import submission failed", slog.String("error", err.Error()))
		return nil, err
	}
	s.summary = summary
	return summary, nil
}

// Summary returns the last submission summary, or nil.
func (s *Session) Summary() *models.ImportSummary { return s.summary }
