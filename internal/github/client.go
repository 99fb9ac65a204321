// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/merge-warden/internal/core"
)

// Client adapts the official go-github client to the platform-neutral
// operations the action table needs.
type Client struct {
	client *github.Client
	logger *slog.Logger
}

// NewClient wraps an authenticated go-github client.
func NewClient(client *github.Client, logger *slog.Logger) *Client {
	return &Client{client: client, logger: logger}
}

// NewPATClient creates a client authenticated with a Personal Access Token.
// This is useful for CLI tools where an App installation is not available.
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &Client{client: github.NewClient(tc), logger: logger}
}

// Raw exposes the underlying go-github client for administrative operations
// outside the platform-neutral surface, such as webhook provisioning.
func (g *Client) Raw() *github.Client { return g.client }

// Labels lists the labels currently on the pull request.
func (g *Client) Labels(ctx context.Context, ev *core.Event) ([]string, error) {
	var all []string
	opts := &github.ListOptions{PerPage: 100}
	for {
		labels, resp, err := g.client.Issues.ListLabelsByIssue(ctx, ev.Repo.Owner, ev.Repo.Name, ev.Unit, opts)
		if err != nil {
			g.logger.Error("failed to list labels", "unit", ev.UnitKey(), "error", err)
			return nil, err
		}
		for _, l := range labels {
			all = append(all, l.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// AddLabels adds the labels to the pull request.
func (g *Client) AddLabels(ctx context.Context, ev *core.Event, labels []string) error {
	_, _, err := g.client.Issues.AddLabelsToIssue(ctx, ev.Repo.Owner, ev.Repo.Name, ev.Unit, labels)
	if err != nil {
		g.logger.Error("failed to add labels", "unit", ev.UnitKey(), "labels", labels, "error", err)
	}
	return err
}

// RemoveLabel removes one label. A label that is already gone is not an
// error: actions re-run after coalescing and must stay idempotent.
func (g *Client) RemoveLabel(ctx context.Context, ev *core.Event, label string) error {
	resp, err := g.client.Issues.RemoveLabelForIssue(ctx, ev.Repo.Owner, ev.Repo.Name, ev.Unit, label)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		g.logger.Error("failed to remove label", "unit", ev.UnitKey(), "label", label, "error", err)
	}
	return err
}

// CreateComment posts a comment on the pull request conversation.
func (g *Client) CreateComment(ctx context.Context, ev *core.Event, body string) error {
	comment := &github.IssueComment{Body: &body}
	_, _, err := g.client.Issues.CreateComment(ctx, ev.Repo.Owner, ev.Repo.Name, ev.Unit, comment)
	if err != nil {
		g.logger.Error("failed to create comment", "unit", ev.UnitKey(), "error", err)
	}
	return err
}

// AddAssignees assigns users to the pull request.
func (g *Client) AddAssignees(ctx context.Context, ev *core.Event, users []string) error {
	_, _, err := g.client.Issues.AddAssignees(ctx, ev.Repo.Owner, ev.Repo.Name, ev.Unit, users)
	if err != nil {
		g.logger.Error("failed to add assignees", "unit", ev.UnitKey(), "users", users, "error", err)
	}
	return err
}

// RequestReviewers requests reviews from the given users.
func (g *Client) RequestReviewers(ctx context.Context, ev *core.Event, users []string) error {
	_, _, err := g.client.PullRequests.RequestReviewers(ctx, ev.Repo.Owner, ev.Repo.Name, ev.Unit,
		github.ReviewersRequest{Reviewers: users})
	if err != nil {
		g.logger.Error("failed to request reviewers", "unit", ev.UnitKey(), "users", users, "error", err)
	}
	return err
}
