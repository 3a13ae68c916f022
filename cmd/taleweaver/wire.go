//go:build wireinject

package main

import (
	"context"
	"io"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/config"
)

func initializeApp(ctx context.Context, cfg config.Config, logger *zap.Logger, in io.Reader, out io.Writer) (*App, func(), error) {
	wire.Build(providerSet)
	return nil, nil, nil
}
