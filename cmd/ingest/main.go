package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"mindcare-rag-be/internal/bootstrap"
	"mindcare-rag-be/internal/config"
	"mindcare-rag-be/internal/dto"
	"mindcare-rag-be/internal/service"
	"mindcare-rag-be/pkg/database"

	"github.com/fatih/color"
	"gorm.io/gorm"
)

func main() {
	only := flag.String("only", "", "comma separated collections to ingest (default: all)")
	flag.Parse()

	cfg := config.Load()

	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.LogSQL)
		if err != nil {
			log.Fatalf("[FATAL] Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	} else {
		color.Yellow("DB_CONNECTION_STRING is not set; ingesting into memory only (useful as a dry run)")
	}

	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build container: %v", err)
	}
	defer container.Close()

	ctx := context.Background()
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Fatalf("[FATAL] Failed to start ingest consumer: %v", err)
	}

	color.Cyan(strings.Repeat("=", 60))
	color.Cyan("Mental Health RAG - Data Ingestion")
	color.Cyan(strings.Repeat("=", 60))

	type source struct {
		collection string
		load       func() ([]dto.IngestDocument, error)
	}
	var sources []source
	for _, name := range service.BookCollections() {
		sources = append(sources, source{name, func() ([]dto.IngestDocument, error) {
			return service.LoadTextSources(cfg.Ingest.DataDir, name)
		}})
	}
	sources = append(sources,
		source{service.NIMHCollection, func() ([]dto.IngestDocument, error) {
			return service.LoadNIMHArticles(cfg.Ingest.NIMHDir, cfg.Ingest.NIMHMetadata)
		}},
		source{service.CounselingCollection, func() ([]dto.IngestDocument, error) {
			return service.LoadCounselingCSV(cfg.Ingest.CounselingCSV)
		}},
	)

	selected := map[string]bool{}
	for _, name := range strings.Split(*only, ",") {
		if name = strings.TrimSpace(name); name != "" {
			selected[name] = true
		}
	}

	failed := false
	for _, src := range sources {
		if len(selected) > 0 && !selected[src.collection] {
			continue
		}

		fmt.Printf("\nProcessing: %s\n", src.collection)
		docs, err := src.load()
		if err != nil {
			color.Red("   Failed to read source: %v", err)
			failed = true
			continue
		}
		if len(docs) == 0 {
			color.Yellow("   No documents found")
			continue
		}
		fmt.Printf("   Loaded %d documents\n", len(docs))

		if _, err := container.IngestService.Ingest(ctx, src.collection, docs); err != nil {
			color.Red("   Failed to ingest: %v", err)
			failed = true
			continue
		}
		color.Green("   Done")
	}

	color.Cyan("\n" + strings.Repeat("=", 60))
	color.Cyan("SUMMARY")
	color.Cyan(strings.Repeat("=", 60))
	total := 0
	for _, src := range sources {
		count := container.VectorStore.Count(ctx, src.collection)
		total += count
		if count > 0 {
			color.Green("   %s: %d", src.collection, count)
		} else {
			color.Red("   %s: %d", src.collection, count)
		}
	}
	fmt.Printf("\n   Total: %d\n", total)

	if failed {
		container.Close()
		os.Exit(1)
	}
}
