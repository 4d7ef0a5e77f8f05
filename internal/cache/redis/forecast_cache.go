package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nagavaishak/Celsius/internal/domain"
)

// forecastTTL keeps an estimate fresh for at most half an hour; a forecast
// fetched for a (city, day, threshold) triple is reused across all markets
// matched to that city within the window.
const forecastTTL = 30 * time.Minute

// ForecastCache implements domain.ForecastCache using JSON-serialized
// estimates under per-(city, day, threshold) keys.
//
// Key schema:
//
//	forecast:{city}:{yyyy-mm-dd}:{threshold}
type ForecastCache struct {
	rdb *redis.Client
}

// NewForecastCache creates a ForecastCache backed by the given Client.
func NewForecastCache(c *Client) *ForecastCache {
	return &ForecastCache{rdb: c.Underlying()}
}

func forecastKey(city string, day time.Time, thresholdC float64) string {
	return fmt.Sprintf("forecast:%s:%s:%.1f",
		strings.ToLower(city), day.Format("2006-01-02"), thresholdC)
}

// Get retrieves a cached estimate. It returns domain.ErrNotFound for missing
// or expired keys.
func (fc *ForecastCache) Get(ctx context.Context, city string, day time.Time, thresholdC float64) (domain.ForecastEstimate, error) {
	data, err := fc.rdb.Get(ctx, forecastKey(city, day, thresholdC)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ForecastEstimate{}, domain.ErrNotFound
		}
		return domain.ForecastEstimate{}, fmt.Errorf("redis: get forecast %s: %w", city, err)
	}

	var est domain.ForecastEstimate
	if err := json.Unmarshal(data, &est); err != nil {
		return domain.ForecastEstimate{}, fmt.Errorf("redis: unmarshal forecast %s: %w", city, err)
	}
	return est, nil
}

// Set stores an estimate with the cache TTL.
func (fc *ForecastCache) Set(ctx context.Context, city string, day time.Time, thresholdC float64, est domain.ForecastEstimate) error {
	data, err := json.Marshal(est)
	if err != nil {
		return fmt.Errorf("redis: marshal forecast %s: %w", city, err)
	}
	if err := fc.rdb.Set(ctx, forecastKey(city, day, thresholdC), data, forecastTTL).Err(); err != nil {
		return fmt.Errorf("redis: set forecast %s: %w", city, err)
	}
	return nil
}
