// Package gitlab adapts the GitLab API to the platform-neutral client and
// reporter seams. Unlike GitHub's per-installation clients, a single token
// client serves every project.
package gitlab

import (
	"context"
	"fmt"
	"log/slog"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/sevigo/merge-warden/internal/core"
)

// Client implements core.PlatformClient on top of the GitLab API. Merge
// request labels are manipulated through the update endpoint, which applies
// additions and removals atomically.
type Client struct {
	client *gitlab.Client
	logger *slog.Logger
}

// NewClient wraps an authenticated GitLab API client.
func NewClient(client *gitlab.Client, logger *slog.Logger) *Client {
	return &Client{client: client, logger: logger}
}

// pid returns the project identifier the API expects.
func pid(ev *core.Event) any {
	if ev.ProjectID != 0 {
		return int(ev.ProjectID)
	}
	return ev.Repo.FullName
}

// Labels lists the labels currently on the merge request.
func (g *Client) Labels(ctx context.Context, ev *core.Event) ([]string, error) {
	mr, _, err := g.client.MergeRequests.GetMergeRequest(pid(ev), ev.Unit, nil, gitlab.WithContext(ctx))
	if err != nil {
		g.logger.Error("failed to get merge request", "unit", ev.UnitKey(), "error", err)
		return nil, err
	}
	return mr.Labels, nil
}

// AddLabels adds the labels to the merge request.
func (g *Client) AddLabels(ctx context.Context, ev *core.Event, labels []string) error {
	add := gitlab.LabelOptions(labels)
	_, _, err := g.client.MergeRequests.UpdateMergeRequest(pid(ev), ev.Unit, &gitlab.UpdateMergeRequestOptions{
		AddLabels: &add,
	}, gitlab.WithContext(ctx))
	if err != nil {
		g.logger.Error("failed to add labels", "unit", ev.UnitKey(), "labels", labels, "error", err)
	}
	return err
}

// RemoveLabel removes one label. Removing an absent label is a no-op on the
// GitLab side already.
func (g *Client) RemoveLabel(ctx context.Context, ev *core.Event, label string) error {
	remove := gitlab.LabelOptions{label}
	_, _, err := g.client.MergeRequests.UpdateMergeRequest(pid(ev), ev.Unit, &gitlab.UpdateMergeRequestOptions{
		RemoveLabels: &remove,
	}, gitlab.WithContext(ctx))
	if err != nil {
		g.logger.Error("failed to remove label", "unit", ev.UnitKey(), "label", label, "error", err)
	}
	return err
}

// CreateComment posts a note on the merge request.
func (g *Client) CreateComment(ctx context.Context, ev *core.Event, body string) error {
	_, _, err := g.client.Notes.CreateMergeRequestNote(pid(ev), ev.Unit, &gitlab.CreateMergeRequestNoteOptions{
		Body: gitlab.Ptr(body),
	}, gitlab.WithContext(ctx))
	if err != nil {
		g.logger.Error("failed to create note", "unit", ev.UnitKey(), "error", err)
	}
	return err
}

// AddAssignees assigns users to the merge request.
func (g *Client) AddAssignees(ctx context.Context, ev *core.Event, users []string) error {
	ids, err := g.userIDs(ctx, users)
	if err != nil {
		return err
	}
	_, _, err = g.client.MergeRequests.UpdateMergeRequest(pid(ev), ev.Unit, &gitlab.UpdateMergeRequestOptions{
		AssigneeIDs: &ids,
	}, gitlab.WithContext(ctx))
	if err != nil {
		g.logger.Error("failed to set assignees", "unit", ev.UnitKey(), "users", users, "error", err)
	}
	return err
}

// RequestReviewers sets the reviewers of the merge request.
func (g *Client) RequestReviewers(ctx context.Context, ev *core.Event, users []string) error {
	ids, err := g.userIDs(ctx, users)
	if err != nil {
		return err
	}
	_, _, err = g.client.MergeRequests.UpdateMergeRequest(pid(ev), ev.Unit, &gitlab.UpdateMergeRequestOptions{
		ReviewerIDs: &ids,
	}, gitlab.WithContext(ctx))
	if err != nil {
		g.logger.Error("failed to set reviewers", "unit", ev.UnitKey(), "users", users, "error", err)
	}
	return err
}

// userIDs resolves usernames to user IDs, which the merge request update
// endpoint requires.
func (g *Client) userIDs(ctx context.Context, usernames []string) ([]int, error) {
	ids := make([]int, 0, len(usernames))
	for _, username := range usernames {
		users, _, err := g.client.Users.ListUsers(&gitlab.ListUsersOptions{
			Username: gitlab.Ptr(username),
		}, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("resolving user %q: %w", username, err)
		}
		if len(users) == 0 {
			g.logger.Warn("unknown GitLab user", "username", username)
			continue
		}
		ids = append(ids, users[0].ID)
	}
	return ids, nil
}
