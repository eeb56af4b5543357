package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tandikan/enroll/internal/models"
	"github.com/tandikan/enroll/pkg/telemetry"
)

// ScheduleCache keeps the offered-schedules catalog in Redis, keyed by year
// level and semester. It fails open: any cache error is logged, counted as a
// miss and the caller falls through to the API.
type ScheduleCache struct {
	client  *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
	metrics *telemetry.Metrics
}

// NewScheduleCache constructs a ScheduleCache. logger and metrics are
// nil-tolerant.
func NewScheduleCache(client *redis.Client, ttl time.Duration, logger *zap.Logger, metrics *telemetry.Metrics) *ScheduleCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleCache{client: client, ttl: ttl, logger: logger, metrics: metrics}
}

func scheduleKey(yearLevel, semester int) string {
	return fmt.Sprintf("schedules:y%d:s%d", yearLevel, semester)
}

// Get returns the cached catalog for the term, reporting whether it was found.
func (c *ScheduleCache) Get(ctx context.Context, yearLevel, semester int) ([]models.Schedule, bool) {
	raw, err := c.client.Get(ctx, scheduleKey(yearLevel, semester)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("schedule cache read failed", zap.Error(err))
		}
		c.metrics.RecordCacheLookup(false)
		return nil, false
	}

	var schedules []models.Schedule
	if err := json.Unmarshal(raw, &schedules); err != nil {
		c.logger.Warn("schedule cache entry corrupt, dropping", zap.Error(err))
		c.client.Del(ctx, scheduleKey(yearLevel, semester))
		c.metrics.RecordCacheLookup(false)
		return nil, false
	}

	c.metrics.RecordCacheLookup(true)
	return schedules, true
}

// Set stores the catalog for the term with the configured TTL.
func (c *ScheduleCache) Set(ctx context.Context, yearLevel, semester int, schedules []models.Schedule) {
	raw, err := json.Marshal(schedules)
	if err != nil {
		c.logger.Warn("schedule cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, scheduleKey(yearLevel, semester), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("schedule cache write failed", zap.Error(err))
	}
}
