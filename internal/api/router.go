package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/myhometown/missionary-import/internal/api/handlers"
	"github.com/myhometown/missionary-import/internal/api/middleware"
	"github.com/myhometown/missionary-import/internal/api/response"
	"github.com/myhometown/missionary-import/internal/config"
	"github.com/myhometown/missionary-import/internal/refdata"
	"github.com/myhometown/missionary-import/internal/repository"
	"github.com/myhometown/missionary-import/pkg/auth"
)

// Stores are the persistence dependencies of the router.
type Stores struct {
	Reference    refdata.Source
	Missionaries handlers.MissionaryStore
	Hours        handlers.HoursStore
	Batches      handlers.BatchStore
	Idempotency  handlers.IdempotencyStore
}

// PostgresStores builds the Postgres-backed stores.
func PostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Reference: repository.ReferenceSource{
			CityRepo:      repository.NewCityRepository(pool),
			CommunityRepo: repository.NewCommunityRepository(pool),
		},
		Missionaries: repository.NewMissionaryRepository(pool),
		Hours:        repository.NewHoursRepository(pool),
		Batches:      repository.NewImportBatchRepository(pool),
		Idempotency:  repository.NewIdempotencyRepository(pool),
	}
}

// NewRouter creates the Gin router backed by Postgres.
func NewRouter(pool *pgxpool.Pool, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	return NewRouterWithStores(PostgresStores(pool), cfg)
}

// NewRouterWithStores creates and configures the Gin router with all routes
// and middleware over the given stores.
func NewRouterWithStores(stores Stores, cfg *config.Config) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins...))
	r.Use(middleware.CorrelationMiddleware())
	r.Use(middleware.StructuredLogging())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "missionary-import",
		})
	})

	databaseHandler := handlers.NewDatabaseHandler(stores.Reference, stores.Missionaries)
	bulkHandler := handlers.NewBulkHandler(stores.Reference, stores.Missionaries, stores.Batches, stores.Idempotency, cfg)
	importHandler := handlers.NewImportHandler(stores.Reference, cfg)
	exportHandler := handlers.NewExportHandler(stores.Reference, stores.Missionaries, stores.Hours)

	anyRole := middleware.RequireRole(auth.RoleAdmin, auth.RoleCoordinator, auth.RoleViewer)
	writers := middleware.RequireRole(auth.RoleAdmin, auth.RoleCoordinator)

	// Record API used by the import client
	database := r.Group("/api/database")
	database.Use(middleware.AuthMiddleware(&cfg.JWT))
	{
		database.GET("/cities", anyRole, databaseHandler.HandleCities)
		database.GET("/communities", anyRole, databaseHandler.HandleCommunities)
		database.GET("/missionaries", anyRole, databaseHandler.HandleMissionaries)
		database.POST("/missionaries/bulk", writers, bulkHandler.HandleBulk)
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(&cfg.JWT))
	{
		v1.POST("/imports/preview", writers, importHandler.HandlePreview)
		v1.GET("/imports/template", anyRole, importHandler.HandleTemplate)
		v1.GET("/missionaries/export", anyRole, exportHandler.HandleExport)
	}

	if cfg.Server.DevTokens {
		r.POST("/dev/token", devTokenHandler(cfg))
	}

	return r
}

// devTokenHandler returns a handler that generates test JWTs for development.
func devTokenHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID string `json:"user_id"`
			Role   string `json:"role"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request", nil)
			return
		}

		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			response.BadRequest(c, "invalid user_id", nil)
			return
		}
		switch req.Role {
		case "":
			req.Role = auth.RoleAdmin
		case auth.RoleAdmin, auth.RoleCoordinator, auth.RoleViewer:
		default:
			response.BadRequest(c, "unknown role", gin.H{
				"allowed": []string{auth.RoleAdmin, auth.RoleCoordinator, auth.RoleViewer},
			})
			return
		}

		token, err := auth.GenerateToken(cfg.JWT.Secret, cfg.JWT.Issuer, userID, req.Role, cfg.JWT.ExpiryHours)
		if err != nil {
			response.InternalError(c, "failed to generate token")
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
