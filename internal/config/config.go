package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type DB struct {
	URL             string        `env:"DATABASE_URL,required"`
	MigrationsPath  string        `env:"DB_MIGRATIONS_PATH" envDefault:"file://db/migrations"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"16"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"8"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"15m"`
}

type HTTP struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// Kafka configures the audit publisher. Leaving Brokers empty disables
// audit publishing entirely.
type Kafka struct {
	Brokers    string `env:"AUDIT_KAFKA_BROKERS"`
	AuditTopic string `env:"AUDIT_KAFKA_TOPIC" envDefault:"gym.audit.events"`
}

type Stripe struct {
	SecretKey string `env:"STRIPE_SECRET_KEY"`
}

type Gym struct {
	// GeofencePath optionally points at a JSON file replacing the built-in
	// location table.
	GeofencePath string `env:"GEOFENCE_CONFIG_PATH"`
	// Timezone is the gym's local timezone, used for daily statistics
	// buckets and the Friday day-pass deal.
	Timezone string `env:"GYM_TIMEZONE" envDefault:"America/Toronto"`
}

type Config struct {
	DB     DB
	HTTP   HTTP
	Kafka  Kafka
	Stripe Stripe
	Gym    Gym
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
