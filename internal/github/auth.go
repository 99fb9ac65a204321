package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"

	"github.com/sevigo/merge-warden/internal/config"
	"github.com/sevigo/merge-warden/internal/core"
)

// Provider mints GitHub clients authenticated as a specific App installation.
// Transports are cached per installation; ghinstallation refreshes the
// short-lived tokens underneath.
type Provider struct {
	cfg    *config.GitHubConfig
	logger *slog.Logger

	mu      sync.Mutex
	clients map[int64]*github.Client
}

// NewProvider creates an installation client provider for the configured App.
func NewProvider(cfg *config.GitHubConfig, logger *slog.Logger) *Provider {
	return &Provider{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[int64]*github.Client),
	}
}

// ClientFor returns the platform client and reporter for the installation the
// event belongs to.
func (p *Provider) ClientFor(ctx context.Context, ev *core.Event) (core.PlatformClient, core.Reporter, error) {
	if ev.InstallationID == 0 {
		return nil, nil, fmt.Errorf("event %s has no installation ID", ev.DeliveryID)
	}

	client, err := p.installationClient(ev.InstallationID)
	if err != nil {
		return nil, nil, err
	}
	return NewClient(client, p.logger), NewReporter(client, p.logger), nil
}

// installationClient returns the cached client for the installation, creating
// it on first use.
func (p *Provider) installationClient(installationID int64) (*github.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[installationID]; ok {
		return client, nil
	}

	p.logger.Info("creating GitHub installation client", "installation_id", installationID)
	transport, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, p.cfg.AppID, installationID, p.cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation transport for %d: %w", installationID, err)
	}

	client := github.NewClient(&http.Client{Transport: transport})
	p.clients[installationID] = client
	return client, nil
}
