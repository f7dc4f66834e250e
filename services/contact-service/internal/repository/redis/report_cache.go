package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/domain"
	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/repository/interfaces"
	platformError "github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
)

const reportCacheKey = "contact:location_report"

// ReportCache implements the ReportCache interface using Redis. The whole
// report is stored under one key with a short TTL and dropped on every
// directory write, so a stale report can live at most one TTL.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// NewReportCache creates a new Redis report cache
func NewReportCache(client *redis.Client, ttl time.Duration, logger logging.Logger) interfaces.ReportCache {
	return &ReportCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached report, or (nil, nil) on a miss
func (c *ReportCache) Get(ctx context.Context) ([]domain.LocationReport, error) {
	data, err := c.client.Get(ctx, reportCacheKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, platformError.Wrap(err, "failed to read report cache")
	}

	var report []domain.LocationReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, platformError.Wrap(err, "failed to unmarshal cached report")
	}

	c.logger.Debug(ctx, "Location report served from cache", map[string]interface{}{
		"row_count": len(report),
	})

	return report, nil
}

// Set stores the report with the configured TTL
func (c *ReportCache) Set(ctx context.Context, report []domain.LocationReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return platformError.Wrap(err, "failed to marshal report for cache")
	}

	if err := c.client.Set(ctx, reportCacheKey, data, c.ttl).Err(); err != nil {
		return platformError.Wrap(err, "failed to write report cache")
	}

	return nil
}

// Invalidate drops the cached report
func (c *ReportCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, reportCacheKey).Err(); err != nil {
		return platformError.Wrap(err, "failed to invalidate report cache")
	}

	return nil
}
