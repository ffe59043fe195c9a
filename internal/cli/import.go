// Package cli implements the one-shot commands runnable without the server.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/medcatalog/internal/config"
	"github.com/mrlokans/medcatalog/internal/database"
	"github.com/mrlokans/medcatalog/internal/database/catalog"
	"github.com/mrlokans/medcatalog/internal/importer"
	"github.com/mrlokans/medcatalog/internal/services"
)

// ImportCommand runs a single import in the foreground, without the task
// queue or the HTTP surface.
type ImportCommand struct {
	Path         string
	DatabasePath string
	DataLocation string
	IndexOnly    bool
	Verbose      bool
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.Path, "path", "", "File or directory to import (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.StringVar(&cmd.DataLocation, "data", config.DefaultDataLocation, "Storage root for aggregated volumes and thumbnails")
	fs.BoolVar(&cmd.IndexOnly, "index-only", false, "Catalog the files in place without copying data into the storage root")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print progress while importing")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -path <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import medical image files into the catalog.\n\n")
		fmt.Fprintf(os.Stderr, "Directories are scanned recursively; files that form one acquisition\n")
		fmt.Fprintf(os.Stderr, "are aggregated into a single volume before being cataloged.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import a study directory into the managed storage area:\n")
		fmt.Fprintf(os.Stderr, "  %s import -path /data/incoming/study42\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Index files where they are, without copying:\n")
		fmt.Fprintf(os.Stderr, "  %s import -path /archive/study42 -index-only\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Path == "" {
		return fmt.Errorf("required flag -path not provided")
	}
	return nil
}

func (cmd *ImportCommand) Run() error {
	fmt.Println("Catalog Import")
	fmt.Println("==============")

	if _, err := os.Stat(cmd.Path); err != nil {
		return fmt.Errorf("target path not accessible: %w", err)
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	absDataLocation, err := filepath.Abs(cmd.DataLocation)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for data location: %w", err)
	}

	if err := os.MkdirAll(absDataLocation, 0o755); err != nil {
		return fmt.Errorf("failed to create data location: %w", err)
	}

	fmt.Printf("Target:   %s\n", cmd.Path)
	fmt.Printf("Database: %s\n", absDBPath)
	if cmd.IndexOnly {
		fmt.Println("Mode:     index-only (files stay in place)")
	} else {
		fmt.Printf("Storage:  %s\n", absDataLocation)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	lastPrinted := -1
	job := importer.NewJob(importer.JobConfig{
		Path:        cmd.Path,
		IndexOnly:   cmd.IndexOnly,
		Registry:    services.DefaultRegistry(),
		Catalog:     catalog.NewRepository(db.DB),
		StorageRoot: absDataLocation,
		Gate:        importer.NewGate(),
		Progress: func(percent int) {
			if !cmd.Verbose || percent == lastPrinted {
				return
			}
			lastPrinted = percent
			fmt.Printf("  %d%%\n", percent)
		},
	})

	fmt.Println("\nImporting...")
	result := job.Run(context.Background())

	switch result.Outcome {
	case importer.OutcomeSuccess:
		fmt.Printf("\nImported %d series\n", len(result.SeriesIDs))
		if result.Message != "" {
			fmt.Printf("\n%s\n", result.Message)
		}
	case importer.OutcomeCancelled:
		fmt.Printf("\nImport cancelled: %s\n", result.Message)
	default:
		return fmt.Errorf("import failed: %s", result.Message)
	}

	return nil
}
