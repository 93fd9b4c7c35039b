package config

import (
	"context"
	"fmt"
	"os"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	AWS       AWSConfig       `yaml:"aws"`
	APNs      APNsConfig      `yaml:"apns"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Community CommunityConfig `yaml:"community"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port" env:"PORT,overwrite"`
	Host string `yaml:"host" env:"HOST,overwrite"`
}

// DatabaseConfig selects and configures the document store
type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER,overwrite"` // memory, postgres, mongo, sqlite
	Host     string `yaml:"host" env:"DB_HOST,overwrite"`
	Port     int    `yaml:"port" env:"DB_PORT,overwrite"`
	User     string `yaml:"user" env:"DB_USER,overwrite"`
	Password string `yaml:"password" env:"DB_PASSWORD,overwrite"`
	DBName   string `yaml:"dbname" env:"DB_NAME,overwrite"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE,overwrite"`
	URI      string `yaml:"uri" env:"MONGO_URI,overwrite"`
	Path     string `yaml:"path" env:"SQLITE_PATH,overwrite"`
}

// AWSConfig holds S3 configuration for photo uploads
type AWSConfig struct {
	Region    string `yaml:"region" env:"AWS_REGION,overwrite"`
	S3Bucket  string `yaml:"s3_bucket" env:"S3_BUCKET,overwrite"`
	AccessKey string `yaml:"access_key" env:"AWS_ACCESS_KEY_ID,overwrite"`
	SecretKey string `yaml:"secret_key" env:"AWS_SECRET_ACCESS_KEY,overwrite"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT,overwrite"` // S3-compatible storage
}

// APNsConfig holds Apple push configuration
type APNsConfig struct {
	Enabled    bool   `yaml:"enabled" env:"APNS_ENABLED,overwrite"`
	KeyFile    string `yaml:"key_file" env:"APNS_KEY_FILE,overwrite"`
	KeyID      string `yaml:"key_id" env:"APNS_KEY_ID,overwrite"`
	TeamID     string `yaml:"team_id" env:"APNS_TEAM_ID,overwrite"`
	Topic      string `yaml:"topic" env:"APNS_TOPIC,overwrite"`
	Production bool   `yaml:"production" env:"APNS_PRODUCTION,overwrite"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string `yaml:"secret" env:"JWT_SECRET,overwrite"`
	ExpiryDays int    `yaml:"expiry_days"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL,overwrite"`
}

// CommunityConfig holds the rules of the neighborhood
type CommunityConfig struct {
	// NoSessionPolicy decides what happens to requests without a token: "demo" or "reject"
	NoSessionPolicy        string  `yaml:"no_session_policy" env:"NO_SESSION_POLICY,overwrite"`
	DemoUserID             string  `yaml:"demo_user_id" env:"DEMO_USER_ID,overwrite"`
	SeedDemoData           bool    `yaml:"seed_demo_data" env:"SEED_DEMO_DATA,overwrite"`
	PenaltyAmount          float64 `yaml:"penalty_amount"`
	VerifiedRequestLimit   int     `yaml:"verified_request_limit"`
	UnverifiedRequestLimit int     `yaml:"unverified_request_limit"`
	DefaultDistance        string  `yaml:"default_distance"`
	DefaultEventPhoto      string  `yaml:"default_event_photo"`
}

// Default returns the configuration used when a value is not set
func Default() Config {
	return Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{Driver: "memory", Port: 5432, SSLMode: "disable"},
		AWS:      AWSConfig{Region: "us-east-1"},
		JWT:      JWTConfig{ExpiryDays: 365},
		Log:      LogConfig{Level: "info"},
		Community: CommunityConfig{
			NoSessionPolicy:        "demo",
			DemoUserID:             "user-1-uid",
			PenaltyAmount:          2.0,
			VerifiedRequestLimit:   5,
			UnverifiedRequestLimit: 3,
			DefaultDistance:        "100m",
			DefaultEventPhoto:      "https://picsum.photos/seed/newevent/800/400",
		},
	}
}

// Load reads configuration from a YAML file and overlays environment variables
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// environment only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the values that have no sensible fallback
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "memory", "postgres", "mongo", "sqlite":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Community.NoSessionPolicy {
	case "demo", "reject":
	default:
		return fmt.Errorf("unknown no_session_policy %q", c.Community.NoSessionPolicy)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.Community.PenaltyAmount < 0 {
		return fmt.Errorf("penalty_amount must not be negative")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
