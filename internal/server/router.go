package server

import (
	"github.com/abduss/artifactrepo/internal/artifact"
	"github.com/abduss/artifactrepo/internal/auth"
	"github.com/abduss/artifactrepo/internal/config"
	"github.com/abduss/artifactrepo/internal/logger"
	"github.com/abduss/artifactrepo/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
)

// Dependencies groups the services required by the HTTP router. DB, Redis
// and ObjectStore are optional; readiness only probes the ones in use.
type Dependencies struct {
	Config          config.Config
	DB              *pgxpool.Pool
	Redis           *redis.Client
	ObjectStore     *minio.Client
	TokenValidator  auth.TokenValidator
	ArtifactService *artifact.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(logger.Middleware())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/api")
	if deps.ArtifactService != nil {
		protected := api.Group("/")
		protected.Use(auth.Middleware(deps.TokenValidator))

		artifact.RegisterRoutes(api, protected, deps.ArtifactService)
	}

	return router
}
