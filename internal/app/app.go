// Package app initializes and orchestrates the main components of the
// merge-warden application: the webhook server, the event serializer, the
// policy layer and the job runner.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/merge-warden/internal/actions"
	"github.com/sevigo/merge-warden/internal/config"
	"github.com/sevigo/merge-warden/internal/db"
	"github.com/sevigo/merge-warden/internal/dispatch"
	"github.com/sevigo/merge-warden/internal/policy"
	"github.com/sevigo/merge-warden/internal/runner"
	"github.com/sevigo/merge-warden/internal/server"
	"github.com/sevigo/merge-warden/internal/server/handler"
	"github.com/sevigo/merge-warden/internal/webhook"
)

// policyCacheSize bounds the in-memory policy cache.
const policyCacheSize = 1024

// App holds the main application components.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	server     *server.Server
	serializer *dispatch.Serializer
	listener   *policy.Listener

	listenerCancel context.CancelFunc
	dbCleanup      func()
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	dbConn, dbCleanup, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := policy.NewStore(dbConn.DB)
	resolver, err := policy.NewResolver(store, policyCacheSize, logger)
	if err != nil {
		dbCleanup()
		return nil, fmt.Errorf("failed to create policy resolver: %w", err)
	}
	listener, err := policy.NewListener(cfg.Database.DSN(), resolver, logger)
	if err != nil {
		dbCleanup()
		return nil, fmt.Errorf("failed to create policy listener: %w", err)
	}

	provider, err := newClientProvider(cfg, logger)
	if err != nil {
		dbCleanup()
		return nil, err
	}

	jobRunner := runner.NewPodmanRunner(cfg.Dispatch.PodmanBinary, logger)
	dispatcher := dispatch.NewDispatcher(actions.Registry(), jobRunner, provider, logger)
	pipeline := dispatch.NewPipeline(resolver, dispatcher, logger)
	serializer := dispatch.NewSerializer(ctx, pipeline, logger)

	verifier := webhook.NewVerifier(cfg.GitHub.WebhookSecret, cfg.GitLab.WebhookToken)
	webhookHandler := handler.NewWebhookHandler(verifier, webhook.NewNormalizer(), serializer, logger)
	httpServer := server.NewServer(cfg, webhookHandler, logger)

	logger.Info("merge-warden initialized",
		"github", cfg.GitHub.Enabled(),
		"gitlab", cfg.GitLab.Enabled(),
	)
	return &App{
		cfg:        cfg,
		logger:     logger,
		server:     httpServer,
		serializer: serializer,
		listener:   listener,
		dbCleanup:  dbCleanup,
	}, nil
}

// Start runs the policy change listener and the HTTP server. It blocks until
// the server shuts down.
func (a *App) Start() error {
	listenerCtx, cancel := context.WithCancel(context.Background())
	a.listenerCancel = cancel
	go a.listener.Run(listenerCtx)

	return a.server.Start()
}

// Stop shuts down the application cleanly: stop accepting deliveries, drain
// in-flight pipelines, then release the policy layer and the database.
func (a *App) Stop() error {
	err := a.server.Stop()
	if err != nil {
		a.logger.Error("error during HTTP server shutdown", "error", err)
	}

	a.serializer.Stop()

	if a.listenerCancel != nil {
		a.listenerCancel()
	}
	a.dbCleanup()

	a.logger.Info("merge-warden stopped")
	return err
}
