package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
	DriverMemory   = "memory"
)

type Config struct {
	AppName     string `envconfig:"APP_NAME" default:"item-catalog"`
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppPort     string `envconfig:"APP_PORT" default:"8087"`
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`

	DB       DBConfig       `envconfig:"DB"`
	DynamoDB DynamoDBConfig `envconfig:"DYNAMODB"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	RabbitMQ RabbitMQConfig `envconfig:"RABBITMQ"`
	JWT      JWTConfig      `envconfig:"JWT"`
	Log      LogConfig      `envconfig:"LOG"`
	Worker   WorkerConfig   `envconfig:"WORKER"`
}

type DBConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"5432"`
	User     string `envconfig:"USER" default:"postgres"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME" default:"item_catalog"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`
}

// DSN renders the keyword/value connection string understood by pgx.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type DynamoDBConfig struct {
	Region      string `envconfig:"REGION" default:"us-east-1"`
	Endpoint    string `envconfig:"ENDPOINT"`
	Profile     string `envconfig:"PROFILE"`
	TablePrefix string `envconfig:"TABLE_PREFIX" default:"item_catalog_"`
}

type RedisConfig struct {
	Enabled  bool          `envconfig:"ENABLED" default:"true"`
	Host     string        `envconfig:"HOST" default:"localhost"`
	Port     string        `envconfig:"PORT" default:"6379"`
	Password string        `envconfig:"PASSWORD"`
	DB       int           `envconfig:"DB" default:"0"`
	TTL      time.Duration `envconfig:"TTL" default:"10m"`
}

type RabbitMQConfig struct {
	URL   string `envconfig:"URL"`
	Queue string `envconfig:"QUEUE" default:"item_activity"`
}

// JWTConfig carries only the signing key; tokens always live for
// auth.DefaultTokenTTL.
type JWTConfig struct {
	Secret string `envconfig:"SECRET"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"text"`
}

type WorkerConfig struct {
	Count       int    `envconfig:"COUNT" default:"3"`
	MetricsPort string `envconfig:"METRICS_PORT" default:"8088"`
}

// Load reads the API configuration. JWT_SECRET has no default and must be
// set.
func Load() (*Config, error) {
	return load(true)
}

// LoadWorker reads the configuration of the activity worker, which never
// signs or verifies tokens.
func LoadWorker() (*Config, error) {
	return load(false)
}

func load(needSecret bool) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := validate(&cfg, needSecret); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validate(cfg *Config, needSecret bool) error {
	switch cfg.StoreDriver {
	case DriverPostgres, DriverDynamoDB, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver: %q", cfg.StoreDriver)
	}

	if port, err := strconv.Atoi(cfg.AppPort); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid app port: %s", cfg.AppPort)
	}

	if needSecret && cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}

	if cfg.Worker.Count < 1 {
		return fmt.Errorf("worker count must be positive, got %d", cfg.Worker.Count)
	}

	return nil
}
