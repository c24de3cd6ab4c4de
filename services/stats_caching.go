package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"main/model"

	"github.com/redis/go-redis/v9"
)

// StatsCache is a short-TTL read-through cache for the dashboard
// aggregates. The aggregation queries scan the whole devices collection,
// and the dashboard polls; a minute of staleness is acceptable there.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

var GlobalStatsCache *StatsCache

// NewStatsCache creates and initializes a new stats cache
func NewStatsCache(redisURL string, ttl time.Duration) (*StatsCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &StatsCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// GetDeviceStats returns nil, nil on a cache miss.
func (sc *StatsCache) GetDeviceStats() (*model.DeviceStats, error) {
	ctx := context.Background()

	data, err := sc.client.Get(ctx, "stats:devices").Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device stats from cache: %v", err)
	}

	var stats model.DeviceStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device stats: %v", err)
	}
	return &stats, nil
}

func (sc *StatsCache) SetDeviceStats(stats *model.DeviceStats) error {
	if stats == nil {
		return fmt.Errorf("cannot cache nil stats")
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal device stats: %v", err)
	}

	ctx := context.Background()
	if err := sc.client.Set(ctx, "stats:devices", data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache device stats: %v", err)
	}
	return nil
}

// GetPopularDevices returns nil, nil on a cache miss. The limit is part of
// the key so different dashboard widgets don't poison each other.
func (sc *StatsCache) GetPopularDevices(limit int) ([]model.PopularDevice, error) {
	ctx := context.Background()

	data, err := sc.client.Get(ctx, popularKey(limit)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get popular devices from cache: %v", err)
	}

	var popular []model.PopularDevice
	if err := json.Unmarshal(data, &popular); err != nil {
		return nil, fmt.Errorf("failed to unmarshal popular devices: %v", err)
	}
	return popular, nil
}

func (sc *StatsCache) SetPopularDevices(limit int, popular []model.PopularDevice) error {
	data, err := json.Marshal(popular)
	if err != nil {
		return fmt.Errorf("failed to marshal popular devices: %v", err)
	}

	ctx := context.Background()
	if err := sc.client.Set(ctx, popularKey(limit), data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache popular devices: %v", err)
	}
	return nil
}

// Invalidate drops all cached aggregates, called after the admin bulk
// delete so the dashboard doesn't show ghosts for a TTL.
func (sc *StatsCache) Invalidate() error {
	ctx := context.Background()

	iter := sc.client.Scan(ctx, 0, "stats:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := sc.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate stats cache: %v", err)
		}
	}
	return iter.Err()
}

func popularKey(limit int) string {
	return "stats:popular:" + strconv.Itoa(limit)
}
