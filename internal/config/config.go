package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port    string `env:"PORT,default=8080"`
	Storage string `env:"STORAGE,default=postgres"`

	DBHost     string `env:"DB_HOST,default=localhost"`
	DBPort     string `env:"DB_PORT,default=5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSSLMode  string `env:"DB_SSLMODE,default=disable"`

	// empty RedisHost disables caching and rate limiting
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT,default=6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	JWTSecret    string `env:"AUTH_JWT_SECRET"`
	JWTPublicKey string `env:"AUTH_JWT_PUBLIC_KEY"`
	AuthIssuer   string `env:"AUTH_ISSUER"`

	PublicHost  string   `env:"PUBLIC_HOST"`
	CORSOrigins []string `env:"CORS_ORIGINS,default=*"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`

	RateLimit        int           `env:"RATE_LIMIT,default=100"`
	RateWindow       time.Duration `env:"RATE_WINDOW,default=1m"`
	RolloverSchedule string        `env:"ROLLOVER_SCHEDULE,default=5 0 * * *"`
	WorkerQueueSize  int           `env:"WORKER_QUEUE_SIZE,default=100"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case StoragePostgres:
		if c.DBUser == "" || c.DBName == "" {
			return errors.New("config: DB_USER and DB_NAME are required for postgres storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE %q", c.Storage)
	}

	if c.JWTSecret == "" && c.JWTPublicKey == "" {
		return errors.New("config: AUTH_JWT_SECRET or AUTH_JWT_PUBLIC_KEY is required")
	}
	if c.RateLimit < 1 {
		return errors.New("config: RATE_LIMIT must be positive")
	}
	return nil
}

// DSN escapes credentials, so passwords may contain URL delimiters.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}
