package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config drives one load run against the blog API.
type Config struct {
	BaseURL            string        `env:"BASE_URL" envDefault:"http://localhost:3000"`
	BenchType          string        `env:"BENCH_TYPE" envDefault:"mixed"`
	Report             string        `env:"REPORT" envDefault:"text"`
	Rate               int           `env:"RATE" envDefault:"500"`
	Duration           time.Duration `env:"DURATION" envDefault:"30s"`
	CreateRatio        float64       `env:"CREATE_RATIO" envDefault:"0.1"`
	Connections        int           `env:"CONNECTIONS" envDefault:"1000"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	RateLimitBypass    string        `env:"RATE_LIMIT_BYPASS_SECRET"`
	InsecureSkipVerify bool          `env:"INSECURE_SKIP_VERIFY"`

	Seed SeedConfig
}

type SeedConfig struct {
	Count   int           `env:"SEED_COUNT" envDefault:"2000"`
	Workers int           `env:"SEED_WORKERS"`
	Timeout time.Duration `env:"SEED_TIMEOUT" envDefault:"30s"`
}

// NeedsSeed reports whether the attack reads existing users.
func (c *Config) NeedsSeed() bool {
	return c.BenchType == "read" || c.BenchType == "mixed"
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
