package config // package config loads application configuration from environment variables

import (
	"errors" // errors reports invalid combinations after parsing
	"fmt"    // fmt wraps parse failures with context
	"time"   // time types the token TTL

	"github.com/joho/godotenv"            // godotenv loads an optional .env file into the process environment
	"github.com/kelseyhightower/envconfig" // envconfig maps environment variables onto the Config struct
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable; nested structs add their tag as a prefix
// (RATE_LIMIT_CAPACITY, REDIS_ADDR, ...).
type Config struct {
	Env  string `envconfig:"APP_ENV" default:"dev"`   // application environment (dev/test/prod)
	Port string `envconfig:"APP_PORT" default:"3001"` // HTTP port to listen on

	DBDriver string `envconfig:"DB_DRIVER" default:"mysql"` // mysql or memory
	DBUser   string `envconfig:"DB_USER"`                   // database username
	DBPass   string `envconfig:"DB_PASS"`                   // database password (optional)
	DBHost   string `envconfig:"DB_HOST" default:"localhost"`
	DBPort   string `envconfig:"DB_PORT" default:"3306"`
	DBName   string `envconfig:"DB_NAME"`

	JWTSecret  string        `envconfig:"JWT_SECRET" required:"true"`     // secret used to sign JWTs
	AccessTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"24h"` // access token lifetime
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`       // bcrypt cost for password hashing

	UploadDir     string `envconfig:"UPLOAD_DIR" default:"uploads"`                 // root directory for uploaded photos
	MaxPhotoBytes int64  `envconfig:"MAX_PHOTO_BYTES" default:"5242880"`            // per-photo upload limit
	FrontendURL   string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"` // CORS origin

	RabbitMQURL    string `envconfig:"RABBITMQ_URL"`                                 // empty disables event publishing
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"contactbook.events"` // topic exchange for domain events

	OTelEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTelEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`

	Redis     RedisConfig     `envconfig:"REDIS"`
	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
}

// Load reads an optional .env file, then the environment, and validates the
// result.  A missing .env file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c.RateLimit.normalize()
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// IsProd reports whether the service runs in production mode.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.DBUser == "" || c.DBName == "" {
			return errors.New("config: DB_USER and DB_NAME are required for the mysql driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("config: BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.AccessTTL <= 0 {
		return errors.New("config: ACCESS_TOKEN_TTL must be positive")
	}
	if c.MaxPhotoBytes <= 0 {
		return errors.New("config: MAX_PHOTO_BYTES must be positive")
	}
	return nil
}
