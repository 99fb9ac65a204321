package provision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/go-github/v73/github"
)

// GitHubRegistrar registers repository webhooks through a PAT-authenticated
// client. App installations normally deliver events without per-repo hooks;
// this covers repositories onboarded outside the App.
type GitHubRegistrar struct {
	client  *github.Client
	hookURL string
	secret  string
	logger  *slog.Logger
}

// NewGitHubRegistrar creates a registrar posting deliveries to hookURL.
func NewGitHubRegistrar(client *github.Client, hookURL, secret string, logger *slog.Logger) *GitHubRegistrar {
	return &GitHubRegistrar{client: client, hookURL: hookURL, secret: secret, logger: logger}
}

// EnsureHook registers the webhook unless one already points at our URL.
func (r *GitHubRegistrar) EnsureHook(ctx context.Context, repoFullName string) error {
	owner, name, ok := strings.Cut(repoFullName, "/")
	if !ok {
		return fmt.Errorf("malformed repository name %q", repoFullName)
	}

	hooks, _, err := r.client.Repositories.ListHooks(ctx, owner, name, &github.ListOptions{PerPage: 100})
	if err != nil {
		return fmt.Errorf("listing hooks: %w", err)
	}
	for _, hook := range hooks {
		if hook.GetConfig().GetURL() == r.hookURL {
			r.logger.Debug("webhook already registered", "repo", repoFullName)
			return nil
		}
	}

	_, _, err = r.client.Repositories.CreateHook(ctx, owner, name, &github.Hook{
		Active: github.Ptr(true),
		Events: []string{"pull_request", "push", "issue_comment", "pull_request_review", "status"},
		Config: &github.HookConfig{
			URL:         github.Ptr(r.hookURL),
			ContentType: github.Ptr("json"),
			Secret:      github.Ptr(r.secret),
		},
	})
	if err != nil {
		return fmt.Errorf("creating hook: %w", err)
	}
	r.logger.Info("webhook registered", "repo", repoFullName)
	return nil
}
