package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries every runtime setting of the API process. Both signing
// secrets are injected here so that no package keeps ambient key state.
type Config struct {
	Addr string `env:"SUBCORE_ADDR" envDefault:":8080"`

	PGDSN           string        `env:"SUBCORE_PG_DSN,required"`
	PGMaxOpenConns  int           `env:"SUBCORE_PG_MAX_OPEN_CONNS" envDefault:"50"`
	PGMaxIdleConns  int           `env:"SUBCORE_PG_MAX_IDLE_CONNS" envDefault:"25"`
	PGConnLifetime  time.Duration `env:"SUBCORE_PG_CONN_LIFETIME" envDefault:"15m"`
	PGConnIdleTime  time.Duration `env:"SUBCORE_PG_CONN_IDLE_TIME" envDefault:"5m"`

	AccessSecret  string        `env:"SUBCORE_ACCESS_SECRET,required"`
	RefreshSecret string        `env:"SUBCORE_REFRESH_SECRET,required"`
	AccessTTL     time.Duration `env:"SUBCORE_ACCESS_TTL" envDefault:"1h"`
	RefreshTTL    time.Duration `env:"SUBCORE_REFRESH_TTL" envDefault:"168h"`

	RateLimitPerSecond int   `env:"SUBCORE_RATE_LIMIT_PER_SECOND" envDefault:"25"`
	RateLimitBurst     int   `env:"SUBCORE_RATE_LIMIT_BURST" envDefault:"50"`
	MaxBodyBytes       int64 `env:"SUBCORE_MAX_BODY_BYTES" envDefault:"1048576"`
}

// Load reads the optional .env file and parses the environment.
func Load() (Config, error) {
	// The .env file is a development convenience; absence is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return Config{}, fmt.Errorf("access and refresh secrets must differ")
	}
	return cfg, nil
}
