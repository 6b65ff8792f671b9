package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mentorbridge/mentorbridge-api/internal/models"
	pkgerrors "github.com/mentorbridge/mentorbridge-api/pkg/errors"
	"github.com/mentorbridge/mentorbridge-api/pkg/logger"
	"github.com/mentorbridge/mentorbridge-api/pkg/metrics"
	"github.com/mentorbridge/mentorbridge-api/pkg/retry"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// RoadmapFetcher loads a roadmap document from the store
type RoadmapFetcher func(ctx context.Context, year int, language string) (*models.Roadmap, error)

const (
	roadmapKeyPrefix = "roadmap:"
	cacheCheckPeriod = 1 * time.Minute
	warmYears        = 4
)

// RoadmapCache is a read-through TTL cache for roadmap documents.
// Writes go through the repository; services invalidate touched keys.
type RoadmapCache struct {
	cache   *gocache.Cache
	fetcher RoadmapFetcher
	ttl     time.Duration
	mu      sync.RWMutex
	ready   bool
}

// NewRoadmapCache creates a roadmap cache with the given TTL
func NewRoadmapCache(fetcher RoadmapFetcher, ttlSeconds int) *RoadmapCache {
	ttl := time.Duration(ttlSeconds) * time.Second

	return &RoadmapCache{
		cache:   gocache.New(ttl, cacheCheckPeriod),
		fetcher: fetcher,
		ttl:     ttl,
	}
}

func roadmapKey(year int, language string) string {
	return fmt.Sprintf("%s%d:%s", roadmapKeyPrefix, year, language)
}

// Initialize warms the cache with every existing roadmap document
// (all supported languages across the study years). Missing documents are
// fine; the warm-up only fails when the store is unreachable.
// Should be called during application startup before accepting requests.
func (rc *RoadmapCache) Initialize(ctx context.Context) error {
	logger.Info("Initializing roadmap cache...")
	startTime := time.Now()

	err := retry.Do(ctx, retry.CacheWarmConfig(), "roadmap_cache_warm", func() error {
		return rc.warm(ctx)
	})
	if err != nil {
		logger.Error("Failed to initialize roadmap cache", zap.Error(err))
		return err
	}

	rc.mu.Lock()
	rc.ready = true
	rc.mu.Unlock()

	logger.Info("Roadmap cache initialized successfully",
		zap.Duration("duration", time.Since(startTime)))

	return nil
}

func (rc *RoadmapCache) warm(ctx context.Context) error {
	loaded := 0
	for year := 1; year <= warmYears; year++ {
		for _, language := range models.SupportedLanguages {
			roadmap, err := rc.fetcher(ctx, year, language)
			if err != nil {
				if errors.Is(err, pkgerrors.ErrNotFound) {
					continue
				}
				return err
			}
			rc.cache.Set(roadmapKey(year, language), roadmap, rc.ttl)
			loaded++
		}
	}

	metrics.CacheSize.WithLabelValues("roadmap").Set(float64(rc.cache.ItemCount()))
	logger.Info("Roadmap cache warmed", zap.Int("documents", loaded))
	return nil
}

// IsReady returns true if the cache has been successfully initialized
func (rc *RoadmapCache) IsReady() bool {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.ready
}

// Get returns the roadmap for (year, language), fetching from the store on miss
func (rc *RoadmapCache) Get(ctx context.Context, year int, language string) (*models.Roadmap, error) {
	key := roadmapKey(year, language)

	if data, found := rc.cache.Get(key); found {
		metrics.CacheHits.WithLabelValues("roadmap").Inc()
		roadmap, ok := data.(*models.Roadmap)
		if !ok {
			return nil, fmt.Errorf("unexpected cache entry type for %s", key)
		}
		return roadmap, nil
	}

	metrics.CacheMisses.WithLabelValues("roadmap").Inc()

	roadmap, err := rc.fetcher(ctx, year, language)
	if err != nil {
		return nil, err
	}

	rc.cache.Set(key, roadmap, rc.ttl)
	metrics.CacheSize.WithLabelValues("roadmap").Set(float64(rc.cache.ItemCount()))

	return roadmap, nil
}

// Invalidate drops the cached document for (year, language)
func (rc *RoadmapCache) Invalidate(year int, language string) {
	rc.cache.Delete(roadmapKey(year, language))
	metrics.CacheSize.WithLabelValues("roadmap").Set(float64(rc.cache.ItemCount()))
}

// InvalidateAll drops every cached roadmap document
func (rc *RoadmapCache) InvalidateAll() {
	rc.cache.Flush()
	metrics.CacheSize.WithLabelValues("roadmap").Set(0)
}
