// Package config loads the ledger configuration from an optional YAML file,
// a .env file and environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendBigQuery = "bigquery"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	BigQuery BigQueryConfig `yaml:"bigquery"`
	GCS      GCSConfig      `yaml:"gcs"`
	Jobs     JobsConfig     `yaml:"jobs"`
	LogLevel string         `yaml:"log_level"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           string `yaml:"port"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// StoreConfig selects and configures the ledger store.
type StoreConfig struct {
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path"`
}

// BigQueryConfig configures the BigQuery store.
type BigQueryConfig struct {
	ProjectID string `yaml:"project_id"`
	DatasetID string `yaml:"dataset_id"`
}

// GCSConfig configures import file storage.
type GCSConfig struct {
	Bucket string `yaml:"bucket"`
}

// JobsConfig configures the background import queue.
type JobsConfig struct {
	Workers    int `yaml:"workers"`
	QueueSize  int `yaml:"queue_size"`
	MaxRetries int `yaml:"max_retries"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			MaxUploadBytes: 10 << 20,
		},
		Store: StoreConfig{
			Backend:    BackendSQLite,
			SQLitePath: "./data/ledger.db",
		},
		BigQuery: BigQueryConfig{
			DatasetID: "ledger",
		},
		Jobs: JobsConfig{
			Workers:    2,
			QueueSize:  100,
			MaxRetries: 3,
		},
		LogLevel: "info",
	}
}

// Load loads configuration. The .env file at envPath (or ./.env when empty
// and present) is loaded into the environment first. If CONFIG_FILE is set,
// that YAML file is applied over the defaults, then environment variables
// override individual fields.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Store.Backend = strings.ToLower(getEnvOrDefault("STORE_BACKEND", c.Store.Backend))
	c.Store.SQLitePath = getEnvOrDefault("SQLITE_PATH", c.Store.SQLitePath)
	c.BigQuery.ProjectID = getEnvOrDefault("BQ_PROJECT_ID", c.BigQuery.ProjectID)
	c.BigQuery.DatasetID = getEnvOrDefault("BQ_DATASET_ID", c.BigQuery.DatasetID)
	c.GCS.Bucket = getEnvOrDefault("GCS_BUCKET", c.GCS.Bucket)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)

	var err error
	if c.Server.MaxUploadBytes, err = parseInt64Env("MAX_UPLOAD_BYTES", c.Server.MaxUploadBytes); err != nil {
		return err
	}

	workers, err := parseInt64Env("JOB_WORKERS", int64(c.Jobs.Workers))
	if err != nil {
		return err
	}
	c.Jobs.Workers = int(workers)

	queueSize, err := parseInt64Env("JOB_QUEUE_SIZE", int64(c.Jobs.QueueSize))
	if err != nil {
		return err
	}
	c.Jobs.QueueSize = int(queueSize)

	maxRetries, err := parseInt64Env("JOB_MAX_RETRIES", int64(c.Jobs.MaxRetries))
	if err != nil {
		return err
	}
	c.Jobs.MaxRetries = int(maxRetries)

	return nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	var missing []string

	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			missing = append(missing, "store.sqlite_path (SQLITE_PATH)")
		}
	case BackendBigQuery:
		if c.BigQuery.ProjectID == "" {
			missing = append(missing, "bigquery.project_id (BQ_PROJECT_ID)")
		}
		if c.BigQuery.DatasetID == "" {
			missing = append(missing, "bigquery.dataset_id (BQ_DATASET_ID)")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want %s, %s or %s)",
			c.Store.Backend, BackendMemory, BackendSQLite, BackendBigQuery)
	}

	if c.Server.MaxUploadBytes <= 0 {
		missing = append(missing, "server.max_upload_bytes (MAX_UPLOAD_BYTES) > 0")
	}
	if c.Jobs.Workers <= 0 {
		missing = append(missing, "jobs.workers (JOB_WORKERS) > 0")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseInt64Env parses an int64 from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseInt64Env(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}
