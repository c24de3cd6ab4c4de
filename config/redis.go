package config

import (
	"main/utils"
	"time"
)

type RedisConfig struct {
	URL      string
	StatsTTL time.Duration
}

// LoadRedisConfig returns the cache configuration. An empty URL disables
// the stats cache entirely; every read then goes straight to Mongo.
func LoadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:      utils.GetEnvAsString("REDIS_URL", ""),
		StatsTTL: utils.GetEnvAsDuration("STATS_CACHE_TTL", 60*time.Second),
	}
}
