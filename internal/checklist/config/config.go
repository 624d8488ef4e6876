// Package config loads the checklist service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gartstein/compliance/internal/checklist/controller"
	"github.com/gartstein/compliance/internal/checklist/db"
	"github.com/gartstein/compliance/internal/checklist/events"
	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable that overrides the config path.
const PathEnv = "CHECKLIST_CONFIG"

// DefaultPath is used when PathEnv is unset.
var DefaultPath = filepath.Join("internal", "checklist", "config", "config.yaml")

// Config struct for YAML configuration
type Config struct {
	GRPCPort         int      `yaml:"GRPC_PORT"`
	HTTPPort         int      `yaml:"HTTP_PORT"`
	DBDriver         string   `yaml:"DB_DRIVER"`
	DBHost           string   `yaml:"DB_HOST"`
	DBPort           int      `yaml:"DB_PORT"`
	DBUser           string   `yaml:"DB_USER"`
	DBPassword       string   `yaml:"DB_PASSWORD"`
	DBName           string   `yaml:"DB_NAME"`
	DBSSLMode        string   `yaml:"DB_SSLMODE"`
	DBPath           string   `yaml:"DB_PATH"`
	KafkaBrokers     []string `yaml:"KAFKA_BROKERS"`
	RefreshTopic     string   `yaml:"REFRESH_TOPIC"`
	RefreshQueueSize int      `yaml:"REFRESH_QUEUE_SIZE"`
	JWTSecret        string   `yaml:"JWT_SECRET"`
	MaxPageSize      int      `yaml:"MAX_PAGE_SIZE"`
	DefaultPageSize  int      `yaml:"DEFAULT_PAGE_SIZE"`
}

// Load reads the file at path, or at the CHECKLIST_CONFIG/default location
// when path is empty, applies defaults and environment overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path == "" {
		path = DefaultPath
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets secrets come from the environment instead of the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.DBPassword = v
	}
}

func (c *Config) applyDefaults() {
	if c.GRPCPort == 0 {
		c.GRPCPort = 50051
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = 8080
	}
	if c.DBDriver == "" {
		c.DBDriver = db.DriverPostgres
	}
	if c.DBPort == 0 {
		c.DBPort = 5432
	}
	if c.DBSSLMode == "" {
		c.DBSSLMode = "disable"
	}
	if c.RefreshTopic == "" {
		c.RefreshTopic = "company-refresh-requests"
	}
	if c.RefreshQueueSize <= 0 {
		c.RefreshQueueSize = events.DefaultQueueSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = controller.MaxPageSize
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = controller.DefaultPageSize
	}
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case db.DriverPostgres:
		if c.DBHost == "" || c.DBName == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for postgres"))
		}
	case db.DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DefaultPageSize > c.MaxPageSize {
		errs = append(errs, fmt.Errorf("DEFAULT_PAGE_SIZE %d exceeds MAX_PAGE_SIZE %d", c.DefaultPageSize, c.MaxPageSize))
	}
	return errors.Join(errs...)
}

// Database returns the repository configuration.
func (c *Config) Database() db.Config {
	return db.Config{
		Driver:   c.DBDriver,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		SSLMode:  c.DBSSLMode,
		Path:     c.DBPath,
	}
}
