package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/myhometown/missionary-import/internal/api/middleware"
	"github.com/myhometown/missionary-import/internal/api/response"
	"github.com/myhometown/missionary-import/internal/export"
	"github.com/myhometown/missionary-import/internal/refdata"
)

// ExportHandler serves the missionary export.
type ExportHandler struct {
	reference    refdata.Source
	missionaries MissionaryStore
	hours        HoursStore
}

// NewExportHandler creates a new export handler.
func NewExportHandler(reference refdata.Source, missionaries MissionaryStore, hours HoursStore) *ExportHandler {
	return &ExportHandler{reference: reference, missionaries: missionaries, hours: hours}
}

// HandleExport handles GET /api/v1/missionaries/export[?format=xlsx].
// The file uses the import column names, so it can be edited and imported again.
func (h *ExportHandler) HandleExport(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.Logger(c)

	missionaries, err := h.missionaries.List(ctx)
	if err != nil {
		logger.Error("failed to list missionaries", slog.String("error", err.Error()))
		response.InternalError(c, "failed to list missionaries")
		return
	}
	totals, err := h.hours.TotalsByMissionary(ctx)
	if err != nil {
		logger.Error("failed to sum hours", slog.String("error", err.Error()))
		response.InternalError(c, "failed to sum hours")
		return
	}
	idx, err := refdata.Load(ctx, h.reference)
	if err != nil {
		logger.Error("failed to load reference data", slog.String("error", err.Error()))
		response.InternalError(c, "failed to load reference data")
		return
	}

	rows := export.BuildRows(missionaries, idx, totals)
	stamp := time.Now().UTC().Format("20060102")

	var buf bytes.Buffer
	if c.Query("format") == "xlsx" {
		if err := export.WriteXLSX(&buf, rows); err != nil {
			logger.Error("failed to write export", slog.String("error", err.Error()))
			response.InternalError(c, "failed to write export")
			return
		}
		attachment(c, fmt.Sprintf("missionaries_%s.xlsx", stamp), contentTypeXLSX, buf.Bytes())
		return
	}

	if err := export.WriteCSV(&buf, rows); err != nil {
		logger.Error("failed to write export", slog.String("error", err.Error()))
		response.InternalError(c, "failed to write export")
		return
	}
	logger.Info("missionaries exported", slog.Int("rows", len(rows)))
	attachment(c, fmt.Sprintf("missionaries_%s.csv", stamp), contentTypeCSV, buf.Bytes())
}
