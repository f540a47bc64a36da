package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Scanner   ScannerConfig
	Broadcast BroadcastConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=attendance_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type ScannerConfig struct {
	// DebounceWindow is how long an identical code replays the prior result
	// instead of re-mutating the ledger (the same tap may be observed by
	// both the device and the UI poller).
	DebounceWindow time.Duration `env:"SCAN_DEBOUNCE_WINDOW, default=3s"`
	// LastScanTTL bounds how long an unconsumed tap auto-fills the
	// registration form.
	LastScanTTL time.Duration `env:"LAST_SCAN_TTL, default=1m"`
}

type BroadcastConfig struct {
	Channel   string `env:"BROADCAST_CHANNEL, default=dashboard"`
	Workers   int    `env:"BROADCAST_WORKERS, default=4"`
	ChartDays int    `env:"CHART_DAYS,        default=7"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
