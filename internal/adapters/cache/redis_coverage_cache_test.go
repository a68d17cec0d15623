package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"field-visit-service/internal/domain"
)

func testCache(t *testing.T) (*RedisCoverageCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCoverageCache(client, 15*time.Minute), mr
}

func sampleStats() domain.CoverageStats {
	return domain.CoverageStats{
		AverageSpeedKmh: 9.5,
		MaxSpeedKmh:     14,
		CoveragePercent: 72.3,
		CoveredAreaHa:   1.85,
		TotalDistanceM:  4101,
		MissedAreas: [][]domain.Coordinates{
			{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 0, Lat: 0}},
		},
	}
}

func TestCoverageCacheRoundTrip(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	if err := c.Put(ctx, "visit-1", sampleStats()); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := c.Get(ctx, "visit-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected a hit")
	}

	want := sampleStats()
	if got.CoveragePercent != want.CoveragePercent || got.TotalDistanceM != want.TotalDistanceM {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if len(got.MissedAreas) != 1 || len(got.MissedAreas[0]) != 4 {
		t.Errorf("missed areas did not survive the round trip: %+v", got.MissedAreas)
	}
}

func TestCoverageCacheMiss(t *testing.T) {
	c, _ := testCache(t)

	got, err := c.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected a miss, got %+v", got)
	}
}

func TestCoverageCacheExpiry(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	if err := c.Put(ctx, "visit-1", sampleStats()); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(16 * time.Minute)

	got, err := c.Get(ctx, "visit-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("entry should have expired")
	}
}

func TestCoverageCacheCorruptEntryIsMiss(t *testing.T) {
	c, mr := testCache(t)

	mr.Set("coverage:visit-1", "{not json")

	got, err := c.Get(context.Background(), "visit-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("corrupt payload should read as a miss, got %+v", got)
	}
}
