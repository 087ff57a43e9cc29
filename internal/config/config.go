package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Inventory InventoryConfig
	Seed      SeedConfig
}

type ServerConfig struct {
	Port    string
	AppName string
}

type LogConfig struct {
	Level       string
	Development bool
}

// DatabaseConfig selects the GORM dialect and pool settings.
type DatabaseConfig struct {
	Driver         string // postgres or sqlite
	URL            string
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	TimeZone       string
	AutoMigrate    bool
	MaxIdleConns   int
	MaxOpenConns   int
	LogLevel       string
	MigrationsPath string
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type InventoryConfig struct {
	LowStockThreshold int
}

// SeedConfig holds the bootstrap administrator account.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// Load reads environment variables (optionally from envFile) into a Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else {
		// a missing .env is fine, values may come from the environment
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    getenvWithDefault("APP_PORT", "3000"),
			AppName: getenvWithDefault("APP_NAME", "POS Retail API v1.0"),
		},
		Log: LogConfig{
			Level:       getenvWithDefault("LOG_LEVEL", "info"),
			Development: getenvBool("LOG_DEVELOPMENT", false),
		},
		Database: DatabaseConfig{
			Driver:         strings.ToLower(getenvWithDefault("DB_DRIVER", "postgres")),
			URL:            os.Getenv("DATABASE_URL"),
			Host:           getenvWithDefault("DB_HOST", "localhost"),
			Port:           getenvWithDefault("DB_PORT", "5432"),
			User:           os.Getenv("DB_USER"),
			Password:       os.Getenv("DB_PASSWORD"),
			Name:           getenvWithDefault("DB_NAME", "pos"),
			SSLMode:        getenvWithDefault("DB_SSLMODE", "disable"),
			TimeZone:       getenvWithDefault("DB_TIMEZONE", "UTC"),
			AutoMigrate:    getenvBool("DB_AUTO_MIGRATE", true),
			MaxIdleConns:   getenvInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:   getenvInt("DB_MAX_OPEN_CONNS", 100),
			LogLevel:       getenvWithDefault("DB_LOG_LEVEL", "warn"),
			MigrationsPath: getenvWithDefault("MIGRATIONS_PATH", "migrations/postgres"),
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			Issuer:     getenvWithDefault("JWT_ISSUER", "go-pos-ws"),
			AccessTTL:  getenvDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL: getenvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Inventory: InventoryConfig{
			LowStockThreshold: getenvInt("LOW_STOCK_THRESHOLD", 10),
		},
		Seed: SeedConfig{
			AdminEmail:    getenvWithDefault("ADMIN_EMAIL", "admin@example.com"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" && c.Database.User == "" {
			return errors.New("DATABASE_URL or DB_USER must be provided")
		}
	case "sqlite":
		if c.Database.URL == "" {
			c.Database.URL = "pos.db"
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if len(c.JWT.Secret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("JWT_REFRESH_TTL must be longer than a positive JWT_ACCESS_TTL")
	}
	if c.Inventory.LowStockThreshold < 0 {
		return errors.New("LOW_STOCK_THRESHOLD must not be negative")
	}
	return nil
}

// DSN builds the driver-specific connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone)
}

// MigrateURL is the URL form golang-migrate expects for postgres.
func (d DatabaseConfig) MigrateURL() string {
	if d.URL != "" && strings.HasPrefix(d.URL, "postgres") {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
