package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/merge-warden/internal/config"
	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/github"
	"github.com/sevigo/merge-warden/internal/gitlab"
)

// routingProvider picks the platform-specific client provider for an event.
type routingProvider struct {
	providers map[core.Platform]core.ClientProvider
}

// newClientProvider assembles the providers for every configured platform.
func newClientProvider(cfg *config.Config, logger *slog.Logger) (core.ClientProvider, error) {
	providers := make(map[core.Platform]core.ClientProvider)

	if cfg.GitHub.Enabled() {
		providers[core.PlatformGitHub] = github.NewProvider(&cfg.GitHub, logger)
	}
	if cfg.GitLab.Enabled() {
		glProvider, err := gitlab.NewProvider(&cfg.GitLab, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitLab provider: %w", err)
		}
		providers[core.PlatformGitLab] = glProvider
	}

	return &routingProvider{providers: providers}, nil
}

// ClientFor returns the client and reporter for the event's platform.
func (r *routingProvider) ClientFor(ctx context.Context, ev *core.Event) (core.PlatformClient, core.Reporter, error) {
	provider, ok := r.providers[ev.Platform]
	if !ok {
		return nil, nil, fmt.Errorf("platform %s is not configured", ev.Platform)
	}
	return provider.ClientFor(ctx, ev)
}
