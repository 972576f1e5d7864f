package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/metrics"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/ranking"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "leaderboard:doc:"
	// Documents are rebuilt on every merge, so a short TTL is enough to
	// bound staleness if an invalidation is ever lost.
	documentTTL = 10 * time.Minute
)

type redisCache struct {
	client  *redis.Client
	metrics metrics.Metrics
}

// New connects to Redis and returns a LeaderboardCache backed by it.
func New(addr, password string, metrics metrics.Metrics) (LeaderboardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &redisCache{client: client, metrics: metrics}, nil
}

func (c *redisCache) GetDocument(ctx context.Context, id string) (*ranking.Document, bool) {
	data, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn("Leaderboard cache read failed", "error", err, "id", id)
		}
		c.metrics.IncCacheMisses()
		return nil, false
	}

	var doc ranking.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn("Failed to unmarshal cached leaderboard document", "error", err, "id", id)
		c.metrics.IncCacheMisses()
		return nil, false
	}

	c.metrics.IncCacheHits()
	return &doc, true
}

func (c *redisCache) SetDocument(ctx context.Context, doc *ranking.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+doc.ID, data, documentTTL).Err()
}

// InvalidateBucket drops every category document for one period bucket in
// a single pipeline round trip.
func (c *redisCache) InvalidateBucket(ctx context.Context, period ranking.Period, periodKey string) error {
	pipe := c.client.Pipeline()
	for _, category := range ranking.Categories() {
		pipe.Del(ctx, keyPrefix+ranking.DocumentID(period, periodKey, category))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisCache) Close() error {
	return c.client.Close()
}

// Noop is a LeaderboardCache that caches nothing. Used when no Redis
// address is configured.
type Noop struct{}

func (Noop) GetDocument(context.Context, string) (*ranking.Document, bool) { return nil, false }
func (Noop) SetDocument(context.Context, *ranking.Document) error         { return nil }
func (Noop) InvalidateBucket(context.Context, ranking.Period, string) error {
	return nil
}
func (Noop) Close() error { return nil }
