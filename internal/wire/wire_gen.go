// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/sevigo/merge-warden/internal/app"
	"github.com/sevigo/merge-warden/internal/config"
	"github.com/sevigo/merge-warden/internal/logger"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	slogLogger := logger.NewLogger(cfg.Logging, nil)

	// Application
	application, err := app.NewApp(ctx, cfg, slogLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	// The database and policy listener are owned by the App and released in
	// App.Stop.
	cleanup := func() {}

	return application, cleanup, nil
}
