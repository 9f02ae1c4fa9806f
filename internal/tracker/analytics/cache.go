package analytics

import (
	"context"
	"encoding/json"
	"time"

	"jobtrack-backend/internal/common/logger"
	"jobtrack-backend/internal/common/metrics"
	"jobtrack-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	statsKeyPrefix   = "jobtrack:stats:apps:"
	networkKeyPrefix = "jobtrack:stats:network:"
)

// Cache holds recently computed snapshots in Redis. Cache failures
// degrade to a recompute; they are never surfaced to the caller.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "statscache"}),
	}
}

func (c *Cache) GetStats(ctx context.Context, userID string) (*models.StatsSnapshot, bool) {
	var snapshot models.StatsSnapshot
	if !c.get(ctx, statsKeyPrefix+userID, "applications", &snapshot) {
		return nil, false
	}
	return &snapshot, true
}

func (c *Cache) SetStats(ctx context.Context, userID string, snapshot *models.StatsSnapshot) {
	c.set(ctx, statsKeyPrefix+userID, snapshot)
}

func (c *Cache) GetNetworkStats(ctx context.Context, userID string) (*models.NetworkStats, bool) {
	var stats models.NetworkStats
	if !c.get(ctx, networkKeyPrefix+userID, "network", &stats) {
		return nil, false
	}
	return &stats, true
}

func (c *Cache) SetNetworkStats(ctx context.Context, userID string, stats *models.NetworkStats) {
	c.set(ctx, networkKeyPrefix+userID, stats)
}

// Invalidate drops both snapshots for the user.
func (c *Cache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, statsKeyPrefix+userID, networkKeyPrefix+userID).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", map[string]interface{}{
			"error":  err,
			"userId": userID,
		})
	}
}

func (c *Cache) get(ctx context.Context, key, kind string, out interface{}) bool {
	raw, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		metrics.StatsCacheHits.WithLabelValues(kind, "miss").Inc()
		return false
	}
	if err != nil {
		metrics.StatsCacheHits.WithLabelValues(kind, "error").Inc()
		c.logger.Warn("cache read failed", map[string]interface{}{"error": err, "key": key})
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		metrics.StatsCacheHits.WithLabelValues(kind, "error").Inc()
		c.logger.Warn("cache decode failed", map[string]interface{}{"error": err, "key": key})
		return false
	}
	metrics.StatsCacheHits.WithLabelValues(kind, "hit").Inc()
	return true
}

func (c *Cache) set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", map[string]interface{}{"error": err, "key": key})
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"error": err, "key": key})
	}
}
