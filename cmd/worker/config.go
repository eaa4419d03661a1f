package main

import (
	"log"

	"designlab-backend/internal/shared/utils"
)

// Config holds all configuration for the worker process itself.
// Domain configuration comes from the container.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	HealthPort    string
}

// loadConfig loads worker configuration from environment variables
func loadConfig() *Config {
	cfg := &Config{
		RedisAddr:     utils.GetEnvVariable("REDIS_HOST", "localhost:6379"),
		RedisPassword: utils.GetEnvVariable("REDIS_PASSWORD", ""),
		RedisDB:       utils.GetEnvInt("REDIS_DB", 0),
		Concurrency:   utils.GetEnvInt("WORKER_CONCURRENCY", 10),
		HealthPort:    utils.GetEnvVariable("WORKER_HEALTH_PORT", "9999"),
	}

	log.Printf("[Config] Redis: %s, Concurrency: %d", cfg.RedisAddr, cfg.Concurrency)

	return cfg
}
