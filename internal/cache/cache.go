/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based caching layer for TMDB lookups.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/friendsincode/movierazzi/internal/telemetry"
)

// Default TTL values for different cache types.
const (
	DefaultRuntimeTTL = 24 * time.Hour
	DefaultPersonTTL  = 12 * time.Hour
)

// Key prefixes for Redis cache.
const (
	KeyRuntime = "movierazzi:cache:runtime:" // + movie_id
	KeyPerson  = "movierazzi:cache:person:"  // + normalized name
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RuntimeTTL time.Duration
	PersonTTL  time.Duration

	// Fallback behavior
	DisableOnError bool // If true, disable caching on Redis errors
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		RuntimeTTL:     DefaultRuntimeTTL,
		PersonTTL:      DefaultPersonTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed caching with graceful fallback.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New creates a new cache instance. When redis is unreachable the cache is
// returned disabled rather than failing the caller.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	if cfg.RedisAddr == "" {
		logger.Info().Msg("no Redis address configured, running without caching")
		return &Cache{
			logger:   logger.With().Str("component", "cache").Logger(),
			config:   cfg,
			disabled: true,
		}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		return &Cache{
			logger:   logger.With().Str("component", "cache").Logger(),
			config:   cfg,
			disabled: true,
		}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")

	return &Cache{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
		config: cfg,
	}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError handles Redis errors with circuit breaker logic.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || err == redis.Nil {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

// get retrieves a value from cache and unmarshals it.
func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.IsAvailable() {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		telemetry.CacheMissesTotal.Inc()
		return false, nil
	}
	if err != nil {
		c.handleError(err, "get")
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		return false, nil
	}

	telemetry.CacheHitsTotal.Inc()
	return true, nil
}

// set stores a value in cache with TTL.
func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}

	return nil
}

// GetRuntime returns a cached movie runtime in minutes.
func (c *Cache) GetRuntime(ctx context.Context, movieID int64) (int, bool) {
	var runtime int
	found, err := c.get(ctx, KeyRuntime+strconv.FormatInt(movieID, 10), &runtime)
	if err != nil || !found {
		return 0, false
	}
	return runtime, true
}

// SetRuntime caches a movie runtime.
func (c *Cache) SetRuntime(ctx context.Context, movieID int64, runtime int) {
	ttl := c.config.RuntimeTTL
	if ttl <= 0 {
		ttl = DefaultRuntimeTTL
	}
	_ = c.set(ctx, KeyRuntime+strconv.FormatInt(movieID, 10), runtime, ttl)
}

// GetPersonID returns a cached TMDB person id for a normalized name.
func (c *Cache) GetPersonID(ctx context.Context, name string) (int64, bool) {
	var id int64
	found, err := c.get(ctx, KeyPerson+name, &id)
	if err != nil || !found {
		return 0, false
	}
	return id, true
}

// SetPersonID caches a TMDB person id.
func (c *Cache) SetPersonID(ctx context.Context, name string, id int64) {
	ttl := c.config.PersonTTL
	if ttl <= 0 {
		ttl = DefaultPersonTTL
	}
	_ = c.set(ctx, KeyPerson+name, id, ttl)
}
