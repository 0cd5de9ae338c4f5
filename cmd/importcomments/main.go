// Command importcomments loads a CSV comment archive into the database.
// Exports from other comment systems can be converted to the expected
// column layout with any spreadsheet tool; run with -help for the format.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"Commentary/internal/config"
	"Commentary/internal/db/postgres"
	"Commentary/internal/importer"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	archivePath := flag.String("file", "", "path to the CSV archive (required)")
	skipInvalid := flag.Bool("skip-invalid", false, "skip rows that fail validation instead of aborting")
	flag.Parse()

	if *archivePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("Failed to set goose dialect:", err)
	}
	if err := goose.Up(db, cfg.Database.MigrationsDir); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	file, err := os.Open(*archivePath)
	if err != nil {
		log.Fatal("Failed to open archive:", err)
	}
	defer file.Close()

	im := importer.New(postgres.NewCommentRepository(db), logger)
	im.SkipInvalid = *skipInvalid

	stats, err := im.Run(context.Background(), file)
	if err != nil {
		log.Fatal("Import failed:", err)
	}

	fmt.Printf("Imported %d comments (%d skipped)\n", stats.Imported, stats.Skipped)
}
