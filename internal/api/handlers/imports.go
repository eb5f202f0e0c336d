package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/myhometown/missionary-import/internal/api/middleware"
	"github.com/myhometown/missionary-import/internal/api/response"
	"github.com/myhometown/missionary-import/internal/config"
	"github.com/myhometown/missionary-import/internal/export"
	"github.com/myhometown/missionary-import/internal/importer"
	"github.com/myhometown/missionary-import/internal/ingest"
	"github.com/myhometown/missionary-import/internal/models"
	"github.com/myhometown/missionary-import/internal/refdata"
	"github.com/myhometown/missionary-import/internal/schema"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ImportHandler serves the import preview and the import template.
type ImportHandler struct {
	reference refdata.Source
	cfg       *config.Config
}

// NewImportHandler creates a new import handler.
func NewImportHandler(reference refdata.Source, cfg *config.Config) *ImportHandler {
	return &ImportHandler{reference: reference, cfg: cfg}
}

// PreviewResult is the data of a successful preview.
type PreviewResult struct {
	ImportID string               `json:"import_id"`
	Filename string               `json:"filename"`
	Header   []string             `json:"header"`
	RowCount int                  `json:"row_count"`
	Mapping  schema.Mapping       `json:"mapping"`
	Warnings []string             `json:"warnings"`
	Result   *models.ImportResult `json:"result"`
}

// HandlePreview handles POST /api/v1/imports/preview. The multipart form
// carries the file and, optionally, a "mapping" field with a JSON object
// from field key to column header; an empty header unmaps the field.
// Nothing is written.
func (h *ImportHandler) HandlePreview(c *gin.Context) {
	logger := middleware.Logger(c)

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file field is required", nil)
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".csv" && ext != ".xlsx" && file.Header.Get("Content-Type") != "text/csv" {
		response.BadRequest(c, "file must be a CSV or XLSX file", nil)
		return
	}
	if file.Size > h.cfg.Upload.MaxFileSize {
		response.TooLarge(c, "FILE_TOO_LARGE",
			fmt.Sprintf("file exceeds max size of %d bytes", h.cfg.Upload.MaxFileSize))
		return
	}

	var overrides map[string]string
	if raw := c.PostForm("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
			response.BadRequest(c, "mapping must be a JSON object of field to column", nil)
			return
		}
	}

	src, err := file.Open()
	if err != nil {
		response.InternalError(c, "failed to open uploaded file")
		return
	}
	defer src.Close()

	session := importer.NewSession(logger)
	if err := session.Load(file.Filename, src); err != nil {
		if errors.Is(err, ingest.ErrEmpty) {
			response.BadRequest(c, err.Error(), nil)
			return
		}
		response.BadRequest(c, fmt.Sprintf("failed to parse file: %v", err), nil)
		return
	}

	table := session.Table()
	if limit := h.cfg.Upload.MaxRows; limit > 0 && len(table.Rows) > limit {
		response.TooLarge(c, "TOO_MANY_ROWS",
			fmt.Sprintf("file has %d rows; at most %d are allowed", len(table.Rows), limit))
		return
	}

	for key, header := range overrides {
		if err := session.SetMapping(schema.FieldKey(key), header); err != nil {
			response.BadRequest(c, err.Error(), nil)
			return
		}
	}

	result, err := session.Validate(c.Request.Context(), h.reference)
	if err != nil {
		var missing *schema.MissingError
		switch {
		case errors.As(err, &missing):
			response.Error(c, http.StatusUnprocessableEntity, "UNMAPPED_FIELDS", err.Error(), gin.H{
				"missing": missing.Labels(),
				"header":  table.Header,
				"mapping": session.Mapping(),
			})
		case errors.Is(err, refdata.ErrUnavailable):
			logger.Error("preview failed", slog.String("error", err.Error()))
			response.InternalError(c, "failed to load reference data")
		default:
			response.BadRequest(c, err.Error(), nil)
		}
		return
	}

	mapping := session.Mapping()
	warnings := append([]string{}, table.Warnings...)
	warnings = append(warnings, schema.UnmappedHeaders(table.Header, mapping)...)

	response.Success(c, http.StatusOK, PreviewResult{
		ImportID: session.ID.String(),
		Filename: session.Filename,
		Header:   table.Header,
		RowCount: len(table.Rows),
		Mapping:  mapping,
		Warnings: warnings,
		Result:   result,
	})
}

// HandleTemplate handles GET /api/v1/imports/template[?format=xlsx].
func (h *ImportHandler) HandleTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if c.Query("format") == "xlsx" {
		if err := export.WriteTemplateXLSX(&buf); err != nil {
			response.InternalError(c, "failed to build template")
			return
		}
		attachment(c, "missionary_import_template.xlsx", contentTypeXLSX, buf.Bytes())
		return
	}

	if err := export.WriteTemplate(&buf); err != nil {
		response.InternalError(c, "failed to build template")
		return
	}
	attachment(c, "missionary_import_template.csv", contentTypeCSV, buf.Bytes())
}

func attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
