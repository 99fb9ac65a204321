package gitlab

import (
	"context"
	"fmt"
	"log/slog"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/sevigo/merge-warden/internal/config"
	"github.com/sevigo/merge-warden/internal/core"
)

// Provider hands out the single token-authenticated client for all GitLab
// projects.
type Provider struct {
	client   *Client
	reporter *Reporter
}

// NewProvider creates the GitLab client provider from the configured token.
func NewProvider(cfg *config.GitLabConfig, logger *slog.Logger) (*Provider, error) {
	api, err := gitlab.NewClient(cfg.Token, gitlab.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	return &Provider{
		client:   NewClient(api, logger),
		reporter: NewReporter(api, logger),
	}, nil
}

// ClientFor returns the shared client and reporter.
func (p *Provider) ClientFor(_ context.Context, _ *core.Event) (core.PlatformClient, core.Reporter, error) {
	return p.client, p.reporter, nil
}
