// Package entrypoint wires the application together and runs the HTTP
// server with graceful shutdown.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/medcatalog/internal/config"
	"github.com/mrlokans/medcatalog/internal/database"
	"github.com/mrlokans/medcatalog/internal/database/catalog"
	"github.com/mrlokans/medcatalog/internal/database/runs"
	http_controllers "github.com/mrlokans/medcatalog/internal/http"
	"github.com/mrlokans/medcatalog/internal/scheduler"
	"github.com/mrlokans/medcatalog/internal/services"
	"github.com/mrlokans/medcatalog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before closing listeners.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting medcatalog v%s", version)

	// The managed storage area must exist and be writable before any
	// import is accepted.
	if err := os.MkdirAll(cfg.Storage.DataLocation, 0o755); err != nil {
		log.Fatalf("Data location %s is not usable: %v", cfg.Storage.DataLocation, err)
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	catalogRepo := catalog.NewRepository(db.DB)
	runsRepo := runs.NewRepository(db.DB)

	registry := services.DefaultRegistry()
	importService := services.NewImportService(runsRepo, catalogRepo, registry, cfg.Storage.DataLocation)

	taskClient, err := tasks.NewClient(cfg.Database.Path, cfg.Tasks)
	if err != nil {
		log.Fatalf("Failed to initialize task queue: %v", err)
	}
	defer func() {
		if err := taskClient.Close(); err != nil {
			log.Printf("Error closing task client: %v", err)
		}
	}()

	taskClient.Register(
		tasks.NewImportQueue(importService),
	)

	taskCtx, taskCtxCancel := context.WithCancel(context.Background())
	go taskClient.Start(taskCtx)

	watchScheduler := scheduler.NewWatchScanScheduler(cfg.Watch, importService, taskClient)
	if err := watchScheduler.Start(); err != nil {
		log.Fatalf("Failed to start watch scan scheduler: %v", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		ImportService: importService,
		Catalog:       catalogRepo,
		TaskClient:    taskClient,
		Version:       version,
	})

	onShutdown := func(ctx context.Context) {
		watchScheduler.Stop()
		taskClient.Stop(ctx)
		taskCtxCancel()
	}

	Serve(router, cfg, onShutdown)
}
