// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// developmentJWTSecret is only accepted when APP_ENV=development.
const developmentJWTSecret = "development-only-jwt-secret"

// minJWTSecretLength is the shortest signing secret accepted outside development.
const minJWTSecretLength = 16

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"3001"`

	// Database (PostgreSQL)
	Database
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	// Cache (Redis)
	RedisURL          string        `env:"REDIS_URL,required"`
	RedisPoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RedisMinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	RedisDialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"2s"`
	RedisOpTimeout    time.Duration `env:"REDIS_OP_TIMEOUT" envDefault:"500ms"`

	// Session tokens
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// Seeded administrator password, used only when the admin user does not exist yet.
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`

	// Timezone that defines calendar days for dashboards and history.
	Timezone string `env:"APP_TIMEZONE" envDefault:"UTC"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Login throttling per client IP
	LoginRateLimitEnabled bool `env:"LOGIN_RATE_LIMIT_ENABLED" envDefault:"true"`
	LoginRatePerMinute    int  `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	LoginRateBurst        int  `env:"LOGIN_RATE_BURST" envDefault:"5"`

	// Client address from X-Forwarded-For/X-Real-IP; enable only behind a trusted proxy.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Directory holding the built frontend bundle; empty disables static serving.
	FrontendDir string `env:"FRONTEND_DIR" envDefault:""`
}

// Database holds the PostgreSQL settings.
// DATABASE_URL wins over the discrete DB_* settings.
type Database struct {
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      int    `env:"DB_PORT" envDefault:"5432"`
	DBName      string `env:"DB_NAME" envDefault:"donations_db"`
	DBUser      string `env:"DB_USER" envDefault:"donations_user"`
	DBPassword  string `env:"DB_PASSWORD" envDefault:"donations_password"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// PostgresURL returns DATABASE_URL, or a URL assembled from the DB_* settings.
func (d *Database) PostgresURL() string {
	if d.DatabaseURL != "" {
		return d.DatabaseURL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.DBUser, d.DBPassword),
		Host:     net.JoinHostPort(d.DBHost, strconv.Itoa(d.DBPort)),
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(d.DBSSLMode),
	}
	return u.String()
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.JWTSecret = developmentJWTSecret
	}
	if !c.IsDevelopment() && len(c.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.Timezone == "" || c.Timezone == "Local" {
		return errors.New("APP_TIMEZONE must name an IANA zone such as UTC or Europe/Paris")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// LoadDatabase reads only the database settings, for tools that need no Redis.
func LoadDatabase() (*Database, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	db := &Database{}
	if err := env.Parse(db); err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	return db, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read .env: %w", err)
	}
	return nil
}

// Load reads an optional .env file, parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
