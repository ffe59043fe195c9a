package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/medcatalog/internal/database/catalog"
	"github.com/mrlokans/medcatalog/internal/services"
	"github.com/mrlokans/medcatalog/internal/tasks"
)

// Handlers bundles the API handler dependencies.
type Handlers struct {
	imports *services.ImportService
	catalog *catalog.Repository
	queue   *tasks.Client
	version string
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

// StartImportRequest is the payload for POST /api/imports.
type StartImportRequest struct {
	Path      string `json:"path" binding:"required"`
	IndexOnly bool   `json:"index_only"`
}

// StartImport creates a pending run and enqueues it for background
// execution. Returns 202 with the run for polling.
func (h *Handlers) StartImport(c *gin.Context) {
	var req StartImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := h.imports.CreateRun(req.Path, req.IndexOnly)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.queue.Add(tasks.ImportTask{RunID: run.ID}).Save(); err != nil {
		log.Printf("enqueue import run %s: %v", run.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue import"})
		return
	}

	c.JSON(http.StatusAccepted, run)
}

func (h *Handlers) ListImports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	list, err := h.imports.Runs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": list})
}

func (h *Handlers) GetImport(c *gin.Context) {
	run, err := h.imports.Run(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "import run not found"})
		return
	}
	c.JSON(http.StatusOK, run)
}

// CancelImport requests cooperative cancellation; the run keeps going until
// the pipeline's next poll point.
func (h *Handlers) CancelImport(c *gin.Context) {
	if err := h.imports.Cancel(c.Param("id")); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "cancelling"})
}

func (h *Handlers) ListPatients(c *gin.Context) {
	patients, err := h.catalog.ListPatients()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patients": patients})
}

func (h *Handlers) ListStudies(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	studies, err := h.catalog.ListStudies(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"studies": studies})
}

func (h *Handlers) ListSeries(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	series, err := h.catalog.ListSeries(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": series})
}

func (h *Handlers) ListImages(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	images, err := h.catalog.ListImages(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, err
	}
	return uint(id), nil
}
