package gitlab

import (
	"context"
	"log/slog"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/sevigo/merge-warden/internal/core"
)

// Reporter publishes action results as commit statuses. GitLab keys statuses
// by name per commit, so setting the same name again updates in place; the
// action name doubles as the report ref.
type Reporter struct {
	client *gitlab.Client
	logger *slog.Logger
}

// NewReporter wraps an authenticated GitLab API client.
func NewReporter(client *gitlab.Client, logger *slog.Logger) *Reporter {
	return &Reporter{client: client, logger: logger}
}

// ReportCheck sets the commit status for the (unit, action) pair.
func (r *Reporter) ReportCheck(ctx context.Context, ev *core.Event, action string, status core.Status, detail, _ string) (string, error) {
	sha := ev.HeadSHA()
	if sha == "" {
		r.logger.Warn("event carries no head SHA, skipping commit status", "unit", ev.UnitKey(), "action", action)
		return "", nil
	}

	_, _, err := r.client.Commits.SetCommitStatus(pid(ev), sha, &gitlab.SetCommitStatusOptions{
		State:       stateFor(status),
		Name:        gitlab.Ptr(action),
		Description: gitlab.Ptr(detail),
	}, gitlab.WithContext(ctx))
	if err != nil {
		r.logger.Error("failed to set commit status", "unit", ev.UnitKey(), "action", action, "error", err)
		return "", err
	}
	return action, nil
}

// stateFor maps an action status to a commit status state.
func stateFor(status core.Status) gitlab.BuildStateValue {
	switch status {
	case core.StatusSuccess:
		return gitlab.Success
	case core.StatusSkipped:
		return gitlab.Skipped
	default:
		return gitlab.Failed
	}
}
