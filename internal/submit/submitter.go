package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/myhometown/missionary-import/internal/models"
)

// BulkPath is the bulk insert endpoint.
const BulkPath = "/api/database/missionaries/bulk"

// HTTPError is a non-success response from the bulk endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("bulk import failed: status %d: %s", e.StatusCode, e.Body)
}

// Refresher reloads the full record set after records were created.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Notifier shows a single user-facing message.
type Notifier interface {
	Notify(level slog.Level, message string)
}

// Submitter posts validated records to the bulk endpoint in one request.
// Failed requests are not retried.
type Submitter struct {
	baseURL    string
	token      string
	httpClient *http.Client
	refresher  Refresher
	notifier   Notifier
	logger     *slog.Logger
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithRefresher sets the hook run after at least one record was inserted.
func WithRefresher(r Refresher) Option {
	return func(s *Submitter) { s.refresher = r }
}

// WithNotifier sets where the summary message goes.
func WithNotifier(n Notifier) Option {
	return func(s *Submitter) { s.notifier = n }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Submitter) { s.httpClient = c }
}

// New creates a submitter for the API at baseURL.
func New(baseURL, token string, timeout time.Duration, opts ...Option) *Submitter {
	s := &Submitter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default().With(slog.String("service", "bulk-submitter")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{Logger: s.logger}
	}
	return s
}

// Submit sends records as one batch and reconciles the per-record outcome.
// A non-2xx response aborts the whole batch with an *HTTPError.
func (s *Submitter) Submit(ctx context.Context, records []models.CanonicalRecord) (*models.ImportSummary, error) {
	return s.SubmitWithKey(ctx, records, "")
}

// SubmitWithKey is Submit with an Idempotency-Key; resending the same key
// returns the outcome of the first request instead of inserting again.
func (s *Submitter) SubmitWithKey(ctx context.Context, records []models.CanonicalRecord, idempotencyKey string) (*models.ImportSummary, error) {
	payload, err := json.Marshal(models.BulkRequest{Missionaries: records})
	if err != nil {
		return nil, fmt.Errorf("encode bulk request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+BulkPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build bulk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	s.logger.Info("submitting bulk import", slog.Int("records", len(records)))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.notifier.Notify(slog.LevelError, fmt.Sprintf("Import failed: %v", err))
		return nil, fmt.Errorf("bulk import request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("read bulk response: %w", err)
		s.notifier.Notify(slog.LevelError, "Import failed: "+err.Error())
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		s.notifier.Notify(slog.LevelError, httpErr.Error())
		return nil, httpErr
	}

	var bulk models.BulkResponse
	if err := json.Unmarshal(body, &bulk); err != nil {
		err = fmt.Errorf("decode bulk response: %w", err)
		s.notifier.Notify(slog.LevelError, "Import failed: "+err.Error())
		return nil, err
	}

	summary := Reconcile(records, bulk)

	if summary.Success > 0 && s.refresher != nil {
		if err := s.refresher.Refresh(ctx); err != nil {
			s.logger.Warn("failed to refresh records after import", slog.String("error", err.Error()))
		}
	}

	level := slog.LevelInfo
	if len(summary.Failed) > 0 || len(summary.Duplicates) > 0 {
		level = slog.LevelWarn
	}
	s.notifier.Notify(level, Message(summary))

	s.logger.Info("bulk import completed",
		slog.Int("inserted", summary.Success),
		slog.Int("duplicates", len(summary.Duplicates)),
		slog.Int("failed", len(summary.Failed)))

	return summary, nil
}

// Reconcile turns the bulk response into a summary. Rejected entries that
// the server reported without an email take it from the submitted record.
func Reconcile(records []models.CanonicalRecord, bulk models.BulkResponse) *models.ImportSummary {
	summary := &models.ImportSummary{
		Success:    bulk.Summary.Inserted,
		Duplicates: make([]models.Duplicate, 0, len(bulk.Duplicates)),
		Failed:     make([]models.Failure, 0, len(bulk.Invalid)),
	}
	summary.Duplicates = append(summary.Duplicates, bulk.Duplicates...)

	for _, inv := range bulk.Invalid {
		email := inv.Email
		if email == "" && inv.Index >= 0 && inv.Index < len(records) {
			email = records[inv.Index].Email
		}
		reason := strings.Join(inv.Errors, "; ")
		if reason == "" {
			reason = "rejected by server"
		}
		summary.Failed = append(summary.Failed, models.Failure{Email: email, Reason: reason})
	}
	return summary
}

// Message renders the one-line summary shown after an import.
func Message(summary *models.ImportSummary) string {
	parts := []string{fmt.Sprintf("Imported %d %s", summary.Success, plural(summary.Success, "record", "records"))}
	if n := len(summary.Duplicates); n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s skipped", n, plural(n, "duplicate", "duplicates")))
	}
	if n := len(summary.Failed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs message at level.
func (n LogNotifier) Notify(level slog.Level, message string) {
	n.Logger.Log(context.Background(), level, message)
}
