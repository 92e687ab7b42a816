// Package main implements the recipestore HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/recipestore/recipestore/internal/app"
	"github.com/recipestore/recipestore/internal/config"
	"github.com/recipestore/recipestore/internal/observability"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		dataDir     string
		httpAddr    string
		storageType string
		bucket      string
		datasetKey  string
		logLevel    string
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for local data")
	flag.StringVar(&httpAddr, "http-addr", "", "HTTP listen address")
	flag.StringVar(&storageType, "storage", "", "Storage type: local, s3")
	flag.StringVar(&bucket, "bucket", "", "S3 bucket holding the recipe dataset")
	flag.StringVar(&datasetKey, "dataset-key", "", "Object key of the recipe CSV")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "recipestore - find and add recipes in a CSV dataset\n\n")
		fmt.Fprintf(os.Stderr, "Usage: recipestore [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  recipestore --data-dir /data/recipestore\n")
		fmt.Fprintf(os.Stderr, "  recipestore --storage s3 --bucket my-recipes\n")
		fmt.Fprintf(os.Stderr, "  recipestore --config /etc/recipestore/config.yaml\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  RECIPESTORE_HTTP_ADDR         HTTP listen address\n")
		fmt.Fprintf(os.Stderr, "  RECIPESTORE_STORAGE_TYPE      Storage type (local, s3)\n")
		fmt.Fprintf(os.Stderr, "  RECIPESTORE_S3_BUCKET         S3 bucket\n")
		fmt.Fprintf(os.Stderr, "  RECIPESTORE_DATASET_KEY       Object key of the recipe CSV\n")
		fmt.Fprintf(os.Stderr, "  RECIPESTORE_DATASET_ENCODING  Object encoding (none, snappy, zstd)\n")
		fmt.Fprintf(os.Stderr, "  RECIPESTORE_LOG_LEVEL         Log level\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("recipestore version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(configFile, func(cfg *config.Config) {
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if httpAddr != "" {
			cfg.HTTP.Addr = httpAddr
		}
		if storageType != "" {
			cfg.Storage.Type = storageType
		}
		if bucket != "" {
			cfg.Storage.S3.Bucket = bucket
		}
		if datasetKey != "" {
			cfg.Dataset.Key = datasetKey
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(observability.LoggerConfig{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting recipestore",
		"version", version,
		"commit", commit,
		"storage", cfg.Storage.Type,
		"data_dir", cfg.DataDir,
		"http_addr", cfg.HTTP.Addr,
	)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to create application", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		logger.Fatalw("Failed to start application", "error", err)
	}

	waitErr := application.WaitForShutdown(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout+5*time.Second)
	defer stopCancel()
	stopErr := application.Stop(stopCtx)

	if waitErr != nil || stopErr != nil {
		logger.Errorw("Shutdown error", "wait_error", waitErr, "stop_error", stopErr)
		logger.Sync()
		os.Exit(1)
	}
}

// loadConfig loads configuration from file, then environment, then the
// command line overrides in applyFlags.
func loadConfig(configFile string, applyFlags func(*config.Config)) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if err := config.LoadFromEnv(cfg); err != nil {
		return nil, err
	}

	applyFlags(cfg)
	return cfg, nil
}
