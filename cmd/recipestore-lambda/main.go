// Package main implements the recipestore AWS Lambda function. It is
// configured only through RECIPESTORE_* environment variables and defaults
// to S3 storage.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	lambdaapi "github.com/recipestore/recipestore/internal/api/lambda"
	"github.com/recipestore/recipestore/internal/app"
	"github.com/recipestore/recipestore/internal/config"
	"github.com/recipestore/recipestore/internal/observability"
)

func main() {
	cfg := config.DefaultConfig()
	cfg.Storage.Type = config.StorageS3
	if err := config.LoadFromEnv(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
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

	components, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to initialize", "error", err)
	}

	handler := lambdaapi.NewHandler(components.Service, logger)
	lambda.Start(handler.Invoke)
}
