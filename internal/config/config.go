package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type PaymentsConfig struct {
	Env            string `yaml:"env" env:"PAYMENTS_ENV" env-default:"local"`
	HTTPServer     `yaml:"http_server"`
	GRPCServer     `yaml:"grpc_server"`
	PaymentsDB     `yaml:"payments_db"`
	LogConfig      `yaml:"log_config"`
	KafkaService   `yaml:"kafka-service"`
	RedisCache     `yaml:"redis-cache"`
	Poller         `yaml:"poller"`
	Idempotency    `yaml:"idempotency"`
	OrderCallbacks `yaml:"order_callbacks"`
	Providers      []ProviderSeed `yaml:"providers"`
}

type HTTPServer struct {
	Host         string        `yaml:"host" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"PAYMENTS_HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"15s"`
}

type GRPCServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"PAYMENTS_GRPC_PORT" env-default:"50061"`
}

type PaymentsDB struct {
	Dsn            string `yaml:"dsn" env:"PAYMENTS_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env-default:"migrations"`
	AutoMigrate    bool   `yaml:"auto_migrate" env-default:"false"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
	LogOutput string `yaml:"log_output" env-default:"stdout"`
}

type KafkaService struct {
	Enabled       bool     `yaml:"enabled" env-default:"false"`
	Brokers       []string `yaml:"brokers" env:"PAYMENTS_KAFKA_BROKERS" env-separator:","`
	EventsTopic   string   `yaml:"events_topic" env-default:"payment-events"`
	SecurityTopic string   `yaml:"security_topic" env-default:"payment-security-events"`
	Username      string   `yaml:"username" env:"PAYMENTS_KAFKA_USERNAME"`
	Password      string   `yaml:"password" env:"PAYMENTS_KAFKA_PASSWORD"`
	SASLMechanism string   `yaml:"sasl_mechanism" env-default:"plain"`
	TLS           bool     `yaml:"tls" env-default:"false"`
}

type RedisCache struct {
	Enabled  bool          `yaml:"enabled" env-default:"false"`
	Addr     string        `yaml:"addr" env:"PAYMENTS_REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `yaml:"password" env:"PAYMENTS_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env-default:"10m"`
}

type Poller struct {
	Interval       time.Duration `yaml:"interval" env-default:"5s"`
	BatchSize      int           `yaml:"batch_size" env-default:"50"`
	Lease          time.Duration `yaml:"lease" env-default:"30s"`
	InitialDelay   time.Duration `yaml:"initial_delay" env-default:"20s"`
	MaxInterval    time.Duration `yaml:"max_interval" env-default:"2m"`
	Multiplier     float64       `yaml:"multiplier" env-default:"2"`
	ExpireAfter    time.Duration `yaml:"expire_after" env-default:"20m"`
	RefundPollAge  time.Duration `yaml:"refund_poll_age" env-default:"2m"`
	HealthInterval time.Duration `yaml:"health_interval" env-default:"1m"`
}

type Idempotency struct {
	TTL time.Duration `yaml:"ttl" env-default:"24h"`
}

// OrderCallbacks posts order status changes to merchant endpoints, keyed by
// tenant id.
type OrderCallbacks struct {
	Enabled     bool              `yaml:"enabled" env-default:"false"`
	Secret      string            `yaml:"secret" env:"PAYMENTS_CALLBACK_SECRET"`
	Timeout     time.Duration     `yaml:"timeout" env-default:"5s"`
	MaxAttempts int               `yaml:"max_attempts" env-default:"3"`
	URLs        map[string]string `yaml:"urls"`
}

// ProviderSeed is written to provider_configs on startup.
type ProviderSeed struct {
	Tenant          string `yaml:"tenant"`
	Name            string `yaml:"name"`
	Environment     string `yaml:"environment" env-default:"test"`
	Enabled         bool   `yaml:"enabled"`
	Default         bool   `yaml:"default"`
	MerchantID      string `yaml:"merchant_id"`
	SaltKey         string `yaml:"salt_key"`
	SaltIndex       string `yaml:"salt_index"`
	BaseURL         string `yaml:"base_url"`
	WebhookUsername string `yaml:"webhook_username"`
	WebhookPassword string `yaml:"webhook_password"`
	CallbackURL     string `yaml:"callback_url"`
	ReturnURL       string `yaml:"return_url"`
	HTTPRetries     int    `yaml:"http_retries"`
}

func MustLoad() *PaymentsConfig {

	// Processing env config variable and file
	configPath := os.Getenv("PAYMENTS_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("PAYMENTS_CONFIG_PATH was not found\n")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v\n", err)
	}

	return cfg
}

func Load(configPath string) (*PaymentsConfig, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	// YAML to struct object
	var cfg PaymentsConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *PaymentsConfig) validate() error {
	if c.PaymentsDB.Dsn == "" {
		return errors.New("payments_db.dsn is required")
	}
	if c.Poller.Multiplier < 1 {
		return fmt.Errorf("poller.multiplier must be >= 1, got %v", c.Poller.Multiplier)
	}
	if c.Poller.BatchSize <= 0 {
		return fmt.Errorf("poller.batch_size must be positive, got %d", c.Poller.BatchSize)
	}
	if c.KafkaService.Enabled && len(c.KafkaService.Brokers) == 0 {
		return errors.New("kafka-service.brokers is required when kafka is enabled")
	}
	for i, p := range c.Providers {
		if p.Tenant == "" || p.Name == "" {
			return fmt.Errorf("providers[%d]: tenant and name are required", i)
		}
	}
	return nil
}
