/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	BaseURL     string // Public base URL (e.g., http://192.168.195.6:8080)
	DBBackend   DatabaseBackend
	DBDSN       string

	JWTSigningKey string
	JWTTTL        time.Duration
	MetricsBind   string

	// TMDB movie metadata service
	TMDBAPIKey  string
	TMDBBaseURL string
	TMDBTimeout time.Duration

	// Retrieval tuning
	MaxCandidates int
	CleanupRetain time.Duration

	// Redis cache (optional; service runs without it)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RuntimeTTL    time.Duration

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("MOVIERAZZI_ENV", "development"),
		HTTPBind:    getEnv("MOVIERAZZI_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("MOVIERAZZI_HTTP_PORT", 8080),
		BaseURL:     getEnv("MOVIERAZZI_BASE_URL", ""),
		DBBackend:   DatabaseBackend(getEnv("MOVIERAZZI_DB_BACKEND", string(DatabasePostgres))),
		DBDSN:       getEnv("MOVIERAZZI_DB_DSN", ""),

		JWTSigningKey: getEnv("MOVIERAZZI_JWT_SIGNING_KEY", ""),
		JWTTTL:        time.Duration(getEnvInt("MOVIERAZZI_JWT_TTL_MINUTES", 60)) * time.Minute,
		MetricsBind:   getEnv("MOVIERAZZI_METRICS_BIND", "127.0.0.1:9000"),

		TMDBAPIKey:  getEnv("MOVIERAZZI_TMDB_API_KEY", os.Getenv("TMDB_API_KEY")),
		TMDBBaseURL: getEnv("MOVIERAZZI_TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBTimeout: time.Duration(getEnvInt("MOVIERAZZI_TMDB_TIMEOUT_SECONDS", 10)) * time.Second,

		MaxCandidates: getEnvInt("MOVIERAZZI_MAX_CANDIDATES", 30),
		CleanupRetain: time.Duration(getEnvInt("MOVIERAZZI_CLEANUP_RETAIN_DAYS", 90)) * 24 * time.Hour,

		RedisAddr:     getEnv("MOVIERAZZI_REDIS_ADDR", ""),
		RedisPassword: getEnv("MOVIERAZZI_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("MOVIERAZZI_REDIS_DB", 0),
		RuntimeTTL:    time.Duration(getEnvInt("MOVIERAZZI_RUNTIME_TTL_HOURS", 24)) * time.Hour,

		TracingEnabled:    getEnvBool("MOVIERAZZI_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("MOVIERAZZI_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("MOVIERAZZI_TRACING_SAMPLE_RATE", 1.0),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("MOVIERAZZI_DB_DSN must be provided")
	}

	if cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("MOVIERAZZI_JWT_SIGNING_KEY must be provided")
	}

	if strings.EqualFold(cfg.Environment, "production") {
		if cfg.TMDBAPIKey == "" {
			return nil, fmt.Errorf("MOVIERAZZI_TMDB_API_KEY must be set in production")
		}
		if len(cfg.JWTSigningKey) < 32 {
			return nil, fmt.Errorf("MOVIERAZZI_JWT_SIGNING_KEY must be at least 32 bytes in production")
		}
	}

	return cfg, nil
}

// getEnv returns the environment variable value for key, or def if unset.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the integer environment variable value for key, or def.
func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvBool returns the boolean environment variable value for key, or def.
func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

// getEnvFloat returns the float environment variable value for key, or def.
func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
