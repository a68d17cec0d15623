package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"field-visit-service/internal/adapters/cache"
	"field-visit-service/internal/adapters/repositories"
	"field-visit-service/internal/api"
	"field-visit-service/internal/platform/db"
	"field-visit-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis) behind ports and starts the
// HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	port := getEnv("PORT", "8080")
	redisAddr := getEnv("REDIS_ADDR", "")

	workers := getEnvInt("REPROCESS_WORKERS", services.DefaultWorkers)

	sqlDB, err := db.Open(databaseURL, workers+2)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	if err := repositories.InitSchema(sqlDB); err != nil {
		log.Fatal(err)
	}

	blocks := repositories.NewSQLBlockRepository(sqlDB)
	pings := repositories.NewSQLPingSource(sqlDB)
	visits := repositories.NewSQLVisitStore(sqlDB)

	cfg := api.RouterConfig{
		Blocks:  blocks,
		Pings:   pings,
		Visits:  visits,
		Metrics: visits,
		Reprocess: services.ReprocessOptions{
			MergeGap:       time.Duration(getEnvInt("MERGE_GAP_MINUTES", 30)) * time.Minute,
			PingPageSize:   getEnvInt("PING_PAGE_SIZE", services.DefaultPingPageSize),
			VisitBatchSize: getEnvInt("VISIT_BATCH_SIZE", services.DefaultVisitBatchSize),
			Workers:        workers,
		},
		WorkWidthM: getEnvFloat("WORK_WIDTH_METERS", services.DefaultWorkWidthM),
	}

	// The coverage cache is optional: without Redis, every request
	// recomputes, which is correct just slower.
	if redisAddr != "" {
		ttl := time.Duration(getEnvInt("COVERAGE_CACHE_TTL_MINUTES", 15)) * time.Minute
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		cfg.CoverageCache = cache.NewRedisCoverageCache(client, ttl)
		log.Printf("coverage cache enabled addr=%s ttl=%s", redisAddr, ttl)
	}

	router := api.NewRouter(cfg)

	// Write timeout covers a full reprocessing pass over a large tenant.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("%s must be a number, got %q", key, v)
	}
	return f
}
