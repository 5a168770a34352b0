package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Rabbit   RabbitConfig
	Billing  BillingConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Addr string `envconfig:"SERVER_ADDR" default:":8080"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName   string `envconfig:"DB_NAME" default:"rental_db"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

type RabbitConfig struct {
	Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"guest"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"guest"`
	VHost    string `envconfig:"RABBITMQ_VHOST" default:"/"`
	Exchange string `envconfig:"RABBITMQ_EXCHANGE" default:"rental_events"`
}

// URL builds the AMQP connection string.
func (c RabbitConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s", c.User, c.Password, c.Host, c.Port, c.VHost)
}

type BillingConfig struct {
	// NodeID seeds the snowflake allocator; must differ between replicas.
	NodeID        int64         `envconfig:"BILLING_NODE_ID" default:"1"`
	DueDays       int           `envconfig:"BILLING_DUE_DAYS" default:"7"`
	CheckInterval time.Duration `envconfig:"BILLING_CHECK_INTERVAL" default:"1h"`
	AutoGenerate  bool          `envconfig:"BILLING_AUTO_GENERATE" default:"true"`
}

type StorageConfig struct {
	DocumentDir string `envconfig:"DOCUMENT_DIR" default:"./documents"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}
