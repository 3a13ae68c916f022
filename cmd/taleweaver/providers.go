package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/config"
	"github.com/cory-johannsen/taleweaver/internal/console"
	"github.com/cory-johannsen/taleweaver/internal/game/condition"
	"github.com/cory-johannsen/taleweaver/internal/game/dice"
	"github.com/cory-johannsen/taleweaver/internal/game/dispatch"
	"github.com/cory-johannsen/taleweaver/internal/game/engine"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/game/trophy"
	"github.com/cory-johannsen/taleweaver/internal/generator"
	"github.com/cory-johannsen/taleweaver/internal/generator/claude"
	"github.com/cory-johannsen/taleweaver/internal/generator/gemini"
	"github.com/cory-johannsen/taleweaver/internal/generator/imagen"
	"github.com/cory-johannsen/taleweaver/internal/generator/scripted"
	"github.com/cory-johannsen/taleweaver/internal/storage/memory"
	"github.com/cory-johannsen/taleweaver/internal/storage/postgres"
	"github.com/cory-johannsen/taleweaver/internal/storage/sqlite"
)

const eventBuffer = 256

// App is the assembled client.
type App struct {
	Console *console.Console
	Engine  *engine.Engine
}

var providerSet = wire.NewSet(
	provideStore,
	provideGenerator,
	provideImages,
	provideDispatcher,
	provideRoller,
	provideEngineConfig,
	provideListener,
	wire.Bind(new(engine.Listener), new(*engine.ChannelListener)),
	engine.New,
	console.New,
	wire.Struct(new(App), "*"),
)

// apiKey returns the configured key, falling back to the provider's
// conventional environment variable.
func apiKey(cfg config.GeneratorConfig) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	switch cfg.Provider {
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	case "claude":
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

func provideStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (session.Store, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("session store ready", zap.String("driver", "postgres"))
		return postgres.NewSessionStore(pool.DB()), pool.Close, nil
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Info("session store ready", zap.String("driver", "sqlite"), zap.String("path", cfg.Storage.SQLitePath))
		return store, func() { _ = store.Close() }, nil
	default:
		logger.Info("session store ready", zap.String("driver", "memory"))
		return memory.NewStore(), func() {}, nil
	}
}

func provideGenerator(ctx context.Context, cfg config.Config, logger *zap.Logger) (generator.Generator, func(), error) {
	g := cfg.Generator
	switch g.Provider {
	case "gemini":
		gen, err := gemini.New(ctx, apiKey(g), g.Model, logger)
		if err != nil {
			return nil, nil, err
		}
		return gen, func() { _ = gen.Close() }, nil
	case "claude":
		gen, err := claude.New(apiKey(g), g.Model, logger)
		if err != nil {
			return nil, nil, err
		}
		return gen, func() {}, nil
	default:
		logger.Warn("scripted generator in use, narration is offline")
		return scripted.New(), func() {}, nil
	}
}

// provideImages returns nil, which disables illustrations, unless the Google
// provider is configured with a key and an image model.
func provideImages(ctx context.Context, cfg config.Config, logger *zap.Logger) (generator.ImageGenerator, error) {
	g := cfg.Generator
	key := apiKey(g)
	if g.Provider != "gemini" || g.ImageModel == "" || key == "" {
		logger.Info("illustrations disabled")
		return nil, nil
	}
	client, err := imagen.New(ctx, key, g.ImageEndpoint, g.ImageModel, g.Timeout, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func provideDispatcher(gen generator.Generator, logger *zap.Logger) (*dispatch.Dispatcher, error) {
	return dispatch.New(gen, dice.NewCryptoSource(), condition.DefaultRegistry(), trophy.DefaultCatalog(), logger)
}

func provideRoller(logger *zap.Logger) *dice.Roller {
	return dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
}

func provideEngineConfig(cfg config.Config) (engine.Config, error) {
	return engine.ConfigFrom(cfg)
}

func provideListener() *engine.ChannelListener {
	return engine.NewChannelListener(eventBuffer)
}
