package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

type StoreDriver string

const (
	StoreBadger StoreDriver = "badger"
	StoreMongo  StoreDriver = "mongo"
	StoreRedis  StoreDriver = "redis"
	StoreMemory StoreDriver = "memory"
)

type Config struct {
	Host                string        `env:"HOST,default=0.0.0.0"`
	Port                int           `env:"PORT,default=5000"`
	GRPCPort            int           `env:"GRPC_PORT,default=5001"`
	LogLevel            string        `env:"LOG_LEVEL,default=INFO"`
	StoreDriver         string        `env:"STORE_DRIVER,default=badger"`
	BadgerFilepath      string        `env:"BADGER_FILEPATH,default=./data/chat-room"`
	MongoURI            string        `env:"MONGO_URI"`
	MongoDatabase       string        `env:"MONGO_DATABASE,default=database_uol"`
	RedisURL            string        `env:"REDIS_URL"`
	SweepInterval       time.Duration `env:"SWEEP_INTERVAL,default=15.5s"`
	InactivityThreshold time.Duration `env:"INACTIVITY_THRESHOLD,default=10.5s"`
	AllowedOrigins      string        `env:"ALLOWED_ORIGINS,default=*"`
	DebugInspectorPort  int           `env:"DEBUG_INSPECTOR_PORT,default=8081"`
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	driver := StoreDriver(c.StoreDriver)
	if !lo.Contains([]StoreDriver{StoreBadger, StoreMongo, StoreRedis, StoreMemory}, driver) {
		return fmt.Errorf("STORE_DRIVER must be one of badger, mongo, redis, memory, got %q", c.StoreDriver)
	}
	if driver == StoreMongo && c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required with the mongo store")
	}
	if driver == StoreRedis && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required with the redis store")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.InactivityThreshold <= 0 {
		return fmt.Errorf("INACTIVITY_THRESHOLD must be positive, got %s", c.InactivityThreshold)
	}
	return nil
}

func (c Config) Origins() []string {
	return lo.Compact(lo.Map(strings.Split(c.AllowedOrigins, ","), func(origin string, _ int) string {
		return strings.TrimSpace(origin)
	}))
}
