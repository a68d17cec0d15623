// Command reprocess runs one batch reprocessing pass from the command line,
// for cron jobs and operator use.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"field-visit-service/internal/adapters/repositories"
	"field-visit-service/internal/platform/db"
	"field-visit-service/internal/services"
)

func main() {
	tenantID := flag.String("tenant", "", "tenant id (required)")
	blockID := flag.String("block", "", "restrict the run to one block id")
	tractorID := flag.String("tractor", "", "restrict the run to one tractor id")
	seedPath := flag.String("seed", "", "seed blocks and pings from a JSON fixture before the run")
	flag.Parse()

	if *tenantID == "" {
		log.Fatal("-tenant is required")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	workers := getEnvInt("REPROCESS_WORKERS", services.DefaultWorkers)

	sqlDB, err := db.Open(databaseURL, workers+2)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	if err := repositories.InitSchema(sqlDB); err != nil {
		log.Fatal(err)
	}

	if *seedPath != "" {
		if err := repositories.SeedFromJSON(sqlDB, *seedPath); err != nil {
			log.Fatal(err)
		}
		log.Printf("seeded fixture %s", *seedPath)
	}

	visits := repositories.NewSQLVisitStore(sqlDB)
	deps := services.ReprocessDeps{
		Blocks:  repositories.NewSQLBlockRepository(sqlDB),
		Pings:   repositories.NewSQLPingSource(sqlDB),
		Visits:  visits,
		Metrics: visits,
	}
	opts := services.ReprocessOptions{
		MergeGap:       time.Duration(getEnvInt("MERGE_GAP_MINUTES", 30)) * time.Minute,
		PingPageSize:   getEnvInt("PING_PAGE_SIZE", services.DefaultPingPageSize),
		VisitBatchSize: getEnvInt("VISIT_BATCH_SIZE", services.DefaultVisitBatchSize),
		Workers:        workers,
	}

	start := time.Now()
	res, err := services.Reprocess(context.Background(), services.ReprocessRequest{
		TenantID:  *tenantID,
		BlockID:   *blockID,
		TractorID: *tractorID,
	}, deps, opts)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf(
		"reprocess done tenant=%s visits=%d metrics=%d errors=%d dur=%s",
		*tenantID, res.VisitsCreated, res.MetricsUpdated, len(res.Errors), time.Since(start).Round(time.Millisecond),
	)
	for _, e := range res.Errors {
		log.Printf("reprocess error: %s", e)
	}
	if !res.Success {
		os.Exit(1)
	}
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, v)
	}
	return n
}
