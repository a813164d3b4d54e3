package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mindcare-rag-be/internal/bootstrap"
	"mindcare-rag-be/internal/config"
	"mindcare-rag-be/internal/server"
	"mindcare-rag-be/internal/tracer"
	"mindcare-rag-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Tracing
	shutdownTracer := tracer.InitTracer(cfg.Tracing)
	defer shutdownTracer(context.Background())

	// 3. Database (optional; passages stay in memory without it)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.LogSQL)
		if err != nil {
			log.Fatalf("[FATAL] Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build container: %v", err)
	}
	defer container.Close()

	// 5. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("[WARN] Ingest consumer not started: %v", err)
	}
	if container.CrisisAuditService != nil {
		if err := container.CrisisAuditService.Start(ctx); err != nil {
			log.Printf("[WARN] Crisis audit not started: %v", err)
		}
	}

	// 6. Initialize and run Server
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		log.Println("[INFO] Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("[WARN] Server shutdown: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Printf("[FATAL] Server stopped: %v", err)
	}
}
