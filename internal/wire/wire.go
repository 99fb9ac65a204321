//go:build wireinject
// +build wireinject

package wire

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"github.com/sevigo/merge-warden/internal/app"
	"github.com/sevigo/merge-warden/internal/config"
	"github.com/sevigo/merge-warden/internal/logger"
)

func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(
		app.NewApp,
		config.LoadConfig,
		provideSlogLogger,
	)
	return &app.App{}, nil, nil
}

func provideSlogLogger(cfg *config.Config) *slog.Logger {
	return logger.NewLogger(cfg.Logging, nil)
}
