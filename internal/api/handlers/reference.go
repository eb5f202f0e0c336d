package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myhometown/missionary-import/internal/api/middleware"
	"github.com/myhometown/missionary-import/internal/api/response"
	"github.com/myhometown/missionary-import/internal/models"
	"github.com/myhometown/missionary-import/internal/refdata"
)

// DatabaseHandler serves the /api/database read endpoints.
type DatabaseHandler struct {
	reference    refdata.Source
	missionaries MissionaryStore
}

// NewDatabaseHandler creates a new database handler.
func NewDatabaseHandler(reference refdata.Source, missionaries MissionaryStore) *DatabaseHandler {
	return &DatabaseHandler{reference: reference, missionaries: missionaries}
}

// HandleCities handles GET /api/database/cities.
func (h *DatabaseHandler) HandleCities(c *gin.Context) {
	cities, err := h.reference.Cities(c.Request.Context())
	if err != nil {
		middleware.Logger(c).Error("failed to list cities", slog.String("error", err.Error()))
		response.InternalError(c, "failed to list cities")
		return
	}
	if cities == nil {
		cities = []models.City{}
	}
	response.Success(c, http.StatusOK, cities)
}

// HandleCommunities handles GET /api/database/communities.
func (h *DatabaseHandler) HandleCommunities(c *gin.Context) {
	communities, err := h.reference.Communities(c.Request.Context())
	if err != nil {
		middleware.Logger(c).Error("failed to list communities", slog.String("error", err.Error()))
		response.InternalError(c, "failed to list communities")
		return
	}
	if communities == nil {
		communities = []models.Community{}
	}
	response.Success(c, http.StatusOK, communities)
}

// HandleMissionaries handles GET /api/database/missionaries.
func (h *DatabaseHandler) HandleMissionaries(c *gin.Context) {
	missionaries, err := h.missionaries.List(c.Request.Context())
	if err != nil {
		middleware.Logger(c).Error("failed to list missionaries", slog.String("error", err.Error()))
		response.InternalError(c, "failed to list missionaries")
		return
	}
	if missionaries == nil {
		missionaries = []models.Missionary{}
	}
	response.Success(c, http.StatusOK, missionaries)
}
