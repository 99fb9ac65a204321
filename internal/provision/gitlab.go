package provision

import (
	"context"
	"fmt"
	"log/slog"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// GitLabRegistrar registers project hooks for merge request, note and push
// events.
type GitLabRegistrar struct {
	client  *gitlab.Client
	hookURL string
	token   string
	logger  *slog.Logger
}

// NewGitLabRegistrar creates a registrar posting deliveries to hookURL with
// the shared webhook token.
func NewGitLabRegistrar(client *gitlab.Client, hookURL, token string, logger *slog.Logger) *GitLabRegistrar {
	return &GitLabRegistrar{client: client, hookURL: hookURL, token: token, logger: logger}
}

// EnsureHook registers the project hook unless one already points at our URL.
func (r *GitLabRegistrar) EnsureHook(ctx context.Context, repoFullName string) error {
	hooks, _, err := r.client.Projects.ListProjectHooks(repoFullName, &gitlab.ListProjectHooksOptions{PerPage: 100}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("listing project hooks: %w", err)
	}
	for _, hook := range hooks {
		if hook.URL == r.hookURL {
			r.logger.Debug("webhook already registered", "repo", repoFullName)
			return nil
		}
	}

	_, _, err = r.client.Projects.AddProjectHook(repoFullName, &gitlab.AddProjectHookOptions{
		URL:                 gitlab.Ptr(r.hookURL),
		Token:               gitlab.Ptr(r.token),
		MergeRequestsEvents: gitlab.Ptr(true),
		NoteEvents:          gitlab.Ptr(true),
		PushEvents:          gitlab.Ptr(true),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("creating project hook: %w", err)
	}
	r.logger.Info("webhook registered", "repo", repoFullName)
	return nil
}
