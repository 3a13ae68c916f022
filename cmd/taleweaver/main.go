// Package main provides the interactive taleweaver client: a terminal console
// driving the narrative engine against the configured generator and store.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/config"
	"github.com/cory-johannsen/taleweaver/internal/observability"
	"github.com/cory-johannsen/taleweaver/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	envFile := flag.String("env", ".env", "optional dotenv file with provider API keys")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading %s: %v", *envFile, err)
	}

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("setting up tracing", zap.Error(err))
	}

	app, cleanup, err := initializeApp(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		logger.Fatal("initializing app", zap.Error(err))
	}

	logger.Info("taleweaver ready",
		zap.String("generator", cfg.Generator.Provider),
		zap.String("model", cfg.Generator.Model),
		zap.String("storage", cfg.Storage.Driver),
		zap.Duration("elapsed", time.Since(start)),
	)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("tracing", server.Closer(func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("flushing traces", zap.Error(err))
		}
	}))
	lifecycle.Add("resources", server.Closer(cleanup))
	lifecycle.Add("console", app.Console)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("taleweaver exited with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("taleweaver stopped", zap.Duration("uptime", time.Since(start)))
}
