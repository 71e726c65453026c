package config

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is built once in main and handed to constructors. Nothing reads the
// environment after Load returns.
type Config struct {
	Port        int    `env:"PORT" envDefault:"3000"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppName     string `env:"APP_NAME" envDefault:"saas-boilerplate"`
	ClientURL   string `env:"CLIENT_URL" envDefault:"http://localhost:5173"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	DB     DB     `envPrefix:"DB_"`
	JWT    JWT    `envPrefix:"JWT_"`
	Kafka  Kafka  `envPrefix:"KAFKA_"`
	AWS    AWS    `envPrefix:"AWS_"`
	Stripe Stripe `envPrefix:"STRIPE_"`
}

// DB sizes the connection pool.
type DB struct {
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"5m"`
}

type JWT struct {
	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
	AccessTTL     time.Duration `env:"ACCESS_TTL" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"REFRESH_TTL" envDefault:"168h"`
}

type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"user_events"`
}

type AWS struct {
	Region          string `env:"REGION" envDefault:"eu-west-2"`
	AccessKey       string `env:"ACCESS_KEY"`
	AccessKeySecret string `env:"ACCESS_KEY_SECRET"`
	Bucket          string `env:"S3_BUCKET_NAME"`
	// Endpoint points the client at an S3-compatible server such as minio.
	Endpoint string `env:"S3_ENDPOINT"`
}

type Stripe struct {
	SecretKey      string   `env:"SECRET_KEY"`
	PublishableKey string   `env:"PUBLISHABLE_KEY"`
	WebhookSecret  string   `env:"WEBHOOK_SECRET"`
	PaymentMethods []string `env:"PAYMENT_METHODS" envSeparator:"," envDefault:"card"`
}

func (k Kafka) Enabled() bool  { return len(k.Brokers) > 0 }
func (a AWS) Enabled() bool    { return a.Bucket != "" }
func (s Stripe) Enabled() bool { return s.SecretKey != "" }

func (c Config) Addr() string { return ":" + strconv.Itoa(c.Port) }

// SuccessURL and CancelURL keep the {CHECKOUT_SESSION_ID} placeholder for
// Stripe to substitute.
func (c Config) SuccessURL() string {
	return strings.TrimRight(c.ClientURL, "/") + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
}

func (c Config) CancelURL() string {
	return strings.TrimRight(c.ClientURL, "/") + "/checkout/cancelled?session_id={CHECKOUT_SESSION_ID}"
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}
	return parse(env.Options{})
}

// FromMap parses cfg from an explicit set of variables instead of the process
// environment.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_SECRET and JWT_REFRESH_TOKEN_SECRET must differ"))
	}
	if c.JWT.AccessTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TTL must be positive"))
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be longer than JWT_ACCESS_TTL"))
	}
	if c.DB.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}
	if c.DB.MaxIdleConns < 0 || c.DB.MaxIdleConns > c.DB.MaxOpenConns {
		errs = append(errs, errors.New("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	return errors.Join(errs...)
}
