package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Mongo      MongoConfig
	Postgres   PostgresConfig
	Tracing    TracingConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Pprof      PprofConfig
	Static     StaticConfig
	Validation ValidationConfig
	App        AppConfig
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"3000"`
	MaxConnections  int           `env:"SERVER_MAX_CONNECTIONS" envDefault:"0"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"mongo"`
}

type MongoConfig struct {
	URI        string        `env:"MONGO_URI" envDefault:"mongodb://db:27017"`
	Database   string        `env:"MONGO_DATABASE" envDefault:"Blog-App"`
	Collection string        `env:"MONGO_COLLECTION" envDefault:"users"`
	Timeout    time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
}

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	DBName   string `env:"POSTGRES_DB" envDefault:"blog"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
}

type TracingConfig struct {
	ServiceName     string        `env:"OTEL_SERVICE_NAME" envDefault:"backend-service"`
	Endpoint        string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"http://jaeger:4318/v1/traces"`
	Protocol        string        `env:"OTEL_EXPORTER_OTLP_PROTOCOL" envDefault:"http/protobuf"`
	StartTimeout    time.Duration `env:"OTEL_START_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"OTEL_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

type CacheConfig struct {
	MaxSizePow2 int           `env:"CACHE_MAX_SIZE_POW2" envDefault:"24"`
	TTL         time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

type RateLimitConfig struct {
	Enabled       bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RPS           float64 `env:"RATE_LIMIT_RPS" envDefault:"100"`
	Burst         int     `env:"RATE_LIMIT_BURST" envDefault:"200"`
	ExpireMinutes int     `env:"RATE_LIMIT_EXPIRE_MINUTES" envDefault:"3"`
	BypassSecret  string  `env:"RATE_LIMIT_BYPASS_SECRET"`
}

type PprofConfig struct {
	Enabled bool   `env:"PPROF_ENABLED" envDefault:"false"`
	Secret  string `env:"PPROF_SECRET"`
}

type StaticConfig struct {
	PublicDir  string `env:"PUBLIC_DIR" envDefault:"public"`
	UploadsDir string `env:"UPLOADS_DIR" envDefault:"uploads"`
}

type ValidationConfig struct {
	MaxRequestBodySize string `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1M"`
}

type AppConfig struct {
	// Env selects production behaviour (exporter, logger, error detail).
	// NODE_ENV is honoured when APP_ENV is unset so existing deployments keep working.
	Env       string `env:"APP_ENV"`
	LegacyEnv string `env:"NODE_ENV" envDefault:"development"`
}

// Environment returns the effective runtime environment name.
func (c AppConfig) Environment() string {
	if c.Env != "" {
		return c.Env
	}
	return c.LegacyEnv
}

// IsDevelopment reports whether error responses may carry internal detail.
func (c AppConfig) IsDevelopment() bool {
	return c.Environment() == EnvDevelopment
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
