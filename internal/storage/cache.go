package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	latestTrendsKey     = "trends:latest"
	trendsGenerationKey = "trends:generation"
)

// latestKey names the cached snapshot for a generation. Every Save bumps the
// generation, so a copy written by a read that raced a Save lands under a
// key no later read looks at.
func latestKey(generation int64) string {
	return fmt.Sprintf("%s:%d", latestTrendsKey, generation)
}

// CachedTrendStore fronts a TrendStore with a Redis copy of the latest snapshot.
// A nil client disables caching.
type CachedTrendStore struct {
	next   TrendStore
	client *redis.Client
	ttl    time.Duration
}

// Ensure CachedTrendStore implements TrendStore
var _ TrendStore = (*CachedTrendStore)(nil)

// NewCachedTrendStore wraps next with a cache-aside layer
func NewCachedTrendStore(next TrendStore, client *redis.Client, ttl time.Duration) *CachedTrendStore {
	return &CachedTrendStore{next: next, client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and pings the server
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Save writes through and starts a new cache generation
func (s *CachedTrendStore) Save(ctx context.Context, snapshot *models.TrendSnapshot) (string, error) {
	id, err := s.next.Save(ctx, snapshot)
	if err != nil {
		return "", err
	}

	if s.client != nil {
		generation, err := s.client.Incr(ctx, trendsGenerationKey).Result()
		if err != nil {
			logrus.Warnf("Failed to invalidate trends cache: %v", err)
			return id, nil
		}
		if err := s.client.Del(ctx, latestKey(generation-1)).Err(); err != nil {
			logrus.Warnf("Failed to drop stale cached trends: %v", err)
		}
	}
	return id, nil
}

func (s *CachedTrendStore) generation(ctx context.Context) (int64, error) {
	generation, err := s.client.Get(ctx, trendsGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

// Latest serves from Redis when possible
func (s *CachedTrendStore) Latest(ctx context.Context) (*models.TrendSnapshot, error) {
	if s.client == nil {
		return s.next.Latest(ctx)
	}

	generation, err := s.generation(ctx)
	if err != nil {
		logrus.Warnf("Trends cache read failed: %v", err)
		return s.next.Latest(ctx)
	}
	key := latestKey(generation)

	raw, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var snapshot models.TrendSnapshot
		if err := json.Unmarshal(raw, &snapshot); err == nil {
			logrus.Debug("Serving trends from cache")
			return &snapshot, nil
		}
		logrus.Warn("Discarding unreadable cached trends")
	} else if !errors.Is(err, redis.Nil) {
		logrus.Warnf("Trends cache read failed: %v", err)
	}

	snapshot, err := s.next.Latest(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(snapshot); err == nil {
		if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			logrus.Warnf("Failed to cache trends: %v", err)
		}
	}
	return snapshot, nil
}
