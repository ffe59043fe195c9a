// Package http exposes the operator API: starting, watching and cancelling
// import runs, and browsing the catalog hierarchy.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/medcatalog/internal/database/catalog"
	"github.com/mrlokans/medcatalog/internal/services"
	"github.com/mrlokans/medcatalog/internal/tasks"
)

// RouterConfig carries the handler dependencies.
type RouterConfig struct {
	ImportService *services.ImportService
	Catalog       *catalog.Repository
	TaskClient    *tasks.Client
	Version       string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	h := &Handlers{
		imports: cfg.ImportService,
		catalog: cfg.Catalog,
		queue:   cfg.TaskClient,
		version: cfg.Version,
	}

	router.GET("/health", h.Health)

	api := router.Group("/api")
	{
		api.POST("/imports", h.StartImport)
		api.GET("/imports", h.ListImports)
		api.GET("/imports/:id", h.GetImport)
		api.POST("/imports/:id/cancel", h.CancelImport)

		api.GET("/patients", h.ListPatients)
		api.GET("/patients/:id/studies", h.ListStudies)
		api.GET("/studies/:id/series", h.ListSeries)
		api.GET("/series/:id/images", h.ListImages)
	}

	return router
}
