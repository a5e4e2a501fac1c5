package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// ErrParsingConfig is returned when the environment cannot be parsed.
var ErrParsingConfig = errors.New("failed to parse configuration")

// AppConfig holds process settings read from the environment.
type AppConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	DatabaseURL    string `env:"DATABASE_URL,required"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	Log      LogConfig      `envPrefix:"LOG_"`
	Minio    MinioConfig    `envPrefix:"MINIO_"`
	Postmark PostmarkConfig `envPrefix:"POSTMARK_"`
	AMQP     AMQPConfig     `envPrefix:"AMQP_"`
	Worker   WorkerConfig   `envPrefix:"WORKER_"`

	// ReminderConfigPath points at an optional TOML reminder policy file.
	ReminderConfigPath string `env:"REMINDER_CONFIG"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"auto"`
}

// MinioConfig enables CSV exports when Endpoint is set.
type MinioConfig struct {
	Endpoint     string        `env:"ENDPOINT"`
	AccessKey    string        `env:"ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey    string        `env:"SECRET_KEY" envDefault:"minioadmin"`
	UseSSL       bool          `env:"USE_SSL" envDefault:"false"`
	ExportBucket string        `env:"EXPORT_BUCKET" envDefault:"subdesk-exports"`
	URLExpiry    time.Duration `env:"URL_EXPIRY" envDefault:"1h"`
}

// PostmarkConfig enables email delivery when ServerToken is set.
type PostmarkConfig struct {
	ServerToken  string `env:"SERVER_TOKEN"`
	AccountToken string `env:"ACCOUNT_TOKEN"`
	From         string `env:"FROM"`
	ReplyTo      string `env:"REPLY_TO"`
}

// AMQPConfig enables WhatsApp delivery through the gateway exchange when URL is set.
type AMQPConfig struct {
	URL        string `env:"URL"`
	Exchange   string `env:"EXCHANGE" envDefault:"whatsapp"`
	RoutingKey string `env:"ROUTING_KEY" envDefault:"reminder.whatsapp"`
}

type WorkerConfig struct {
	Concurrency int `env:"CONCURRENCY" envDefault:"10"`
}

// IsProduction reports whether the process runs with production settings.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional .env file and parses AppConfig from the environment.
func Load() (*AppConfig, error) {
	// the .env file is optional
	_ = godotenv.Load()

	cfg, err := env.ParseAs[AppConfig]()
	if err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom parses AppConfig from the given variables only.
func LoadFrom(environment map[string]string) (*AppConfig, error) {
	var cfg AppConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) finalize() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("%w: JWT_SECRET is required in production", ErrParsingConfig)
		}
		c.JWTSecret = rand.Text()
		log.Warn().Msg("JWT_SECRET not set; using a generated secret, tokens will not survive a restart")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: TOKEN_TTL must be positive", ErrParsingConfig)
	}
	if c.Postmark.ServerToken != "" && c.Postmark.From == "" {
		return fmt.Errorf("%w: POSTMARK_FROM is required with POSTMARK_SERVER_TOKEN", ErrParsingConfig)
	}
	return nil
}
