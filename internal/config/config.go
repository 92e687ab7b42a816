// Package config provides configuration for the recipestore binaries.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage types.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// EnvPrefix is the prefix of every environment variable read by LoadFromEnv.
const EnvPrefix = "RECIPESTORE_"

// Config holds the configuration of the recipe service.
type Config struct {
	// DataDir is the base directory for local data.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	HTTP    HTTPConfig    `json:"http" yaml:"http"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Dataset DatasetConfig `json:"dataset" yaml:"dataset"`
	Query   QueryConfig   `json:"query" yaml:"query"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr" yaml:"addr"`

	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout" yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown, including draining in-flight
	// requests.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	Bucket string `json:"bucket" yaml:"bucket"`
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint     string `json:"endpoint" yaml:"endpoint"`
	UsePathStyle bool   `json:"use_path_style" yaml:"use_path_style"`

	// Static credentials. Empty means the default AWS credential chain.
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// DatasetConfig describes the recipe dataset object.
type DatasetConfig struct {
	// Key is the object key of the CSV.
	Key string `json:"key" yaml:"key"`

	// Encoding is the object encoding: none, snappy, zstd
	Encoding string `json:"encoding" yaml:"encoding"`

	// ConditionalWrites makes saves fail on concurrent modification instead
	// of overwriting.
	ConditionalWrites bool `json:"conditional_writes" yaml:"conditional_writes"`
}

// QueryConfig holds find defaults and statistics settings.
type QueryConfig struct {
	// DefaultSample is the sample size used when a request gives none.
	DefaultSample int `json:"default_sample" yaml:"default_sample"`

	// StatsWindow is how long filter statistics are kept.
	StatsWindow time.Duration `json:"stats_window" yaml:"stats_window"`

	// StatsPruneInterval is the interval between statistics prunes.
	StatsPruneInterval time.Duration `json:"stats_prune_interval" yaml:"stats_prune_interval"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/recipestore",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Type: StorageLocal,
		},
		Dataset: DatasetConfig{
			Key:      "recipes.csv",
			Encoding: "none",
		},
		Query: QueryConfig{
			DefaultSample:      5,
			StatsWindow:        time.Hour,
			StatsPruneInterval: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Resolve fills in paths derived from DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/recipestore"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "storage")
	}
	if c.Dataset.Key == "" {
		c.Dataset.Key = "recipes.csv"
	}
	if c.Dataset.Encoding == "" {
		c.Dataset.Encoding = "none"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageLocal:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required when storage type is local")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket is required when storage type is s3")
		}
		if (c.Storage.S3.AccessKeyID == "") != (c.Storage.S3.SecretAccessKey == "") {
			return fmt.Errorf("s3.access_key_id and s3.secret_access_key must be set together")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Dataset.Key == "" {
		return fmt.Errorf("dataset.key is required")
	}
	switch c.Dataset.Encoding {
	case "none", "snappy", "zstd":
	default:
		return fmt.Errorf("invalid dataset encoding: %s (must be none, snappy, or zstd)", c.Dataset.Encoding)
	}

	if c.Query.DefaultSample <= 0 {
		return fmt.Errorf("query.default_sample must be positive, got %d", c.Query.DefaultSample)
	}
	if c.Query.StatsWindow < 0 || c.Query.StatsPruneInterval < 0 {
		return fmt.Errorf("query statistics durations must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file on top of the
// defaults. YAML accepts durations as strings such as "30s"; JSON only
// accepts them as integer nanoseconds.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv overrides cfg from RECIPESTORE_* environment variables.
// Malformed numeric, boolean and duration values are reported.
func LoadFromEnv(cfg *Config) error {
	e := envReader{}

	e.str("DATA_DIR", &cfg.DataDir)

	e.str("HTTP_ADDR", &cfg.HTTP.Addr)
	e.duration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout)
	e.duration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout)
	e.duration("HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout)
	e.duration("HTTP_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout)

	e.str("STORAGE_TYPE", &cfg.Storage.Type)
	e.str("STORAGE_PATH", &cfg.Storage.Path)
	e.str("S3_BUCKET", &cfg.Storage.S3.Bucket)
	e.str("S3_REGION", &cfg.Storage.S3.Region)
	e.str("S3_ENDPOINT", &cfg.Storage.S3.Endpoint)
	e.boolean("S3_USE_PATH_STYLE", &cfg.Storage.S3.UsePathStyle)
	e.str("S3_ACCESS_KEY_ID", &cfg.Storage.S3.AccessKeyID)
	e.str("S3_SECRET_ACCESS_KEY", &cfg.Storage.S3.SecretAccessKey)

	e.str("DATASET_KEY", &cfg.Dataset.Key)
	e.str("DATASET_ENCODING", &cfg.Dataset.Encoding)
	e.boolean("DATASET_CONDITIONAL_WRITES", &cfg.Dataset.ConditionalWrites)

	e.integer("QUERY_DEFAULT_SAMPLE", &cfg.Query.DefaultSample)
	e.duration("QUERY_STATS_WINDOW", &cfg.Query.StatsWindow)
	e.duration("QUERY_STATS_PRUNE_INTERVAL", &cfg.Query.StatsPruneInterval)

	e.str("LOG_LEVEL", &cfg.Logging.Level)
	e.boolean("LOG_DEVELOPMENT", &cfg.Logging.Development)

	return e.err
}

// envReader reads prefixed environment variables, keeping the first error.
type envReader struct {
	err error
}

func (e *envReader) lookup(name string) (string, bool) {
	v := os.Getenv(EnvPrefix + name)
	return v, v != ""
}

func (e *envReader) fail(name, v string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s%s=%q: %w", EnvPrefix, name, v, err)
	}
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.lookup(name); ok {
		*dst = v
	}
}

func (e *envReader) integer(name string, dst *int) {
	if v, ok := e.lookup(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) boolean(name string, dst *bool) {
	if v, ok := e.lookup(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(name string, dst *time.Duration) {
	if v, ok := e.lookup(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(name, v, err)
			return
		}
		*dst = d
	}
}

// EnsureDirectories creates the local directories the configuration uses.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	if c.Storage.Type == StorageLocal {
		dirs = append(dirs, c.Storage.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
