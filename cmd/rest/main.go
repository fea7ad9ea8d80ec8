package main

import (
	"context"
	"log"
	"time"

	"stockpoints-be/internal/bootstrap"
	"stockpoints-be/internal/config"
	"stockpoints-be/internal/server"
	"stockpoints-be/internal/tracer"
	"stockpoints-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	// Note: In a larger app, we might use an errgroup or supervisor here
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// In-process renewal ticker. An external scheduler hitting the
	// /internal/v1/renewals/run endpoint works too; the batch is
	// idempotent so overlapping triggers are safe.
	if cfg.Renewal.Interval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Renewal.Interval)
			defer ticker.Stop()
			for range ticker.C {
				if _, err := container.RenewalService.RunDueRenewals(context.Background()); err != nil {
					log.Printf("Background Renewal Error: %v", err)
				}
			}
		}()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
