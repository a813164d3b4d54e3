package main

import (
	"context"
	"log"
	"os"

	"mindcare-rag-be/internal/model"
	"mindcare-rag-be/internal/repository/implementation"
	"mindcare-rag-be/internal/repository/specification"
	"mindcare-rag-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("[FATAL] DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		log.Fatal("[FATAL] Failed to connect to database:", err)
	}

	// 2. Extensions AutoMigrate does not create
	log.Println("[INFO] Step 1: Setting up extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("[FATAL] Failed to execute setup SQL: %v", err)
		}
	}

	// 3. Tables
	log.Println("[INFO] Step 2: Running AutoMigrate...")
	if err := db.AutoMigrate(&model.KnowledgeCollection{}, &model.Passage{}); err != nil {
		log.Fatalf("[FATAL] AutoMigrate failed: %v", err)
	}

	// 4. Index for cosine distance search
	log.Println("[INFO] Step 3: Creating vector index...")
	indexSQL := `CREATE INDEX IF NOT EXISTS idx_passages_embedding_hnsw
		ON passages USING hnsw (embedding vector_cosine_ops);`
	if err := db.Exec(indexSQL).Error; err != nil {
		// hnsw needs fixed dimensions; without them queries still work via sequential scan.
		log.Printf("[WARN] Failed to create vector index: %v", err)
	}

	// 5. Report what is already indexed
	repo := implementation.NewPassageRepository(db)
	collections, err := repo.ListCollections(context.Background(), specification.OrderBy{Field: "name"})
	if err != nil {
		log.Printf("[WARN] Failed to list collections: %v", err)
	}
	for _, c := range collections {
		log.Printf("[INFO] Collection %s (created %s)", c.Name, c.CreatedAt.Format("2006-01-02"))
	}

	log.Println("[INFO] Database migration completed")
}
