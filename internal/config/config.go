// Package config provides runtime configuration values for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server and the counter store.
type Config struct {
	HTTPAddr           string
	RedisHost          string
	RedisPort          int
	PoolMaxConnections int
	StockKey           string
	InitialStock       int64
	UnsafeDelay        time.Duration
	StoreTimeout       time.Duration
	ShutdownTimeout    time.Duration
}

// RedisAddr returns the host:port pair for the store client.
func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		RedisHost:          getenv("REDIS_HOST", "localhost"),
		RedisPort:          atoienv("REDIS_PORT", 6379),
		PoolMaxConnections: atoienv("POOL_MAX_CONNECTIONS", 100),
		StockKey:           getenv("STOCK_KEY", "product_stock"),
		InitialStock:       int64(atoienv("INITIAL_STOCK", 50)),
		UnsafeDelay:        time.Duration(atoienv("UNSAFE_DELAY_MS", 50)) * time.Millisecond,
		StoreTimeout:       time.Duration(atoienv("STORE_TIMEOUT_SECONDS", 5)) * time.Second,
		ShutdownTimeout:    time.Duration(atoienv("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}
