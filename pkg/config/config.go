package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const devJWTSecret = "supersecretjwtkey"

type Config struct {
	Port     string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	Env      string `envconfig:"ENV" default:"development" validate:"oneof=development test staging production"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// Storage
	StorageBackend  string        `envconfig:"STORAGE_BACKEND" default:"postgres" validate:"oneof=postgres sqlite neo4j mongo"`
	StorageRetries  int           `envconfig:"STORAGE_RETRIES" default:"3" validate:"min=1,max=10"`
	StorageBackoff  time.Duration `envconfig:"STORAGE_BACKOFF" default:"100ms"`
	PostgresConnStr string        `envconfig:"POSTGRES_CONN_STR" validate:"required_if=StorageBackend postgres"`
	SQLitePath      string        `envconfig:"SQLITE_PATH" default:"daoplus.db" validate:"required_if=StorageBackend sqlite"`
	Neo4jURI        string        `envconfig:"NEO4J_URI" validate:"required_if=StorageBackend neo4j"`
	Neo4jUser       string        `envconfig:"NEO4J_USER" default:"neo4j"`
	Neo4jPassword   string        `envconfig:"NEO4J_PASSWORD"`
	Neo4jDatabase   string        `envconfig:"NEO4J_DATABASE" default:"neo4j"`
	MongoURI        string        `envconfig:"MONGO_URI" validate:"required_if=StorageBackend mongo"`
	MongoDatabase   string        `envconfig:"MONGO_DATABASE" default:"daoplus"`

	// Auth
	JWTSecret       string        `envconfig:"JWT_SECRET" default:"supersecretjwtkey" validate:"required,min=16"`
	TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"72h"`
	ModeratorEmails []string      `envconfig:"MODERATOR_EMAILS"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Env == "production" && c.JWTSecret == devJWTSecret {
		return errors.New("invalid configuration: JWT_SECRET must be set in production")
	}
	return nil
}
