// Package provision registers webhooks on every onboarded repository so the
// server receives deliveries without manual per-repo setup.
package provision

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/merge-warden/internal/core"
)

// registrationConcurrency bounds parallel API calls during provisioning.
const registrationConcurrency = 8

// Registrar ensures the webhook exists on one repository of its platform.
// EnsureHook is idempotent: an already registered hook is left untouched.
type Registrar interface {
	EnsureHook(ctx context.Context, repoFullName string) error
}

// RepositoryLister yields the onboarded repositories per platform.
type RepositoryLister interface {
	ListRepositories(ctx context.Context, platform core.Platform) ([]string, error)
}

// Provisioner walks the onboarded repositories of every configured platform
// and registers the webhook on each.
type Provisioner struct {
	store      RepositoryLister
	registrars map[core.Platform]Registrar
	logger     *slog.Logger
}

// NewProvisioner creates a provisioner over the given per-platform registrars.
func NewProvisioner(store RepositoryLister, registrars map[core.Platform]Registrar, logger *slog.Logger) *Provisioner {
	return &Provisioner{store: store, registrars: registrars, logger: logger}
}

// Provision registers webhooks on all onboarded repositories. Individual
// repository failures are collected, not fatal to the rest of the run.
func (p *Provisioner) Provision(ctx context.Context) error {
	var failed int
	for platform, registrar := range p.registrars {
		repos, err := p.store.ListRepositories(ctx, platform)
		if err != nil {
			return fmt.Errorf("listing %s repositories: %w", platform, err)
		}
		p.logger.Info("provisioning webhooks", "platform", platform, "repositories", len(repos))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(registrationConcurrency)
		results := make([]error, len(repos))
		for i, repo := range repos {
			g.Go(func() error {
				results[i] = registrar.EnsureHook(gctx, repo)
				return nil
			})
		}
		_ = g.Wait()

		for i, err := range results {
			if err != nil {
				failed++
				p.logger.Error("webhook registration failed", "platform", platform, "repo", repos[i], "error", err)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d repositories could not be provisioned", failed)
	}
	return nil
}
