package github

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/merge-warden/internal/core"
)

// Reporter publishes action results as GitHub check runs on the head commit.
// The returned ref is the check-run ID; passing it back updates the existing
// check run instead of stacking a new one per event.
type Reporter struct {
	client *github.Client
	logger *slog.Logger
}

// NewReporter wraps an authenticated go-github client.
func NewReporter(client *github.Client, logger *slog.Logger) *Reporter {
	return &Reporter{client: client, logger: logger}
}

// ReportCheck creates or updates the check run for the (unit, action) pair.
func (r *Reporter) ReportCheck(ctx context.Context, ev *core.Event, action string, status core.Status, detail, existingRef string) (string, error) {
	conclusion := conclusionFor(status)
	summary := detail
	if summary == "" {
		summary = string(status)
	}
	output := &github.CheckRunOutput{
		Title:   github.Ptr(action),
		Summary: github.Ptr(summary),
	}

	if existingRef != "" {
		id, err := strconv.ParseInt(existingRef, 10, 64)
		if err != nil {
			return "", fmt.Errorf("malformed check run ref %q: %w", existingRef, err)
		}
		_, _, err = r.client.Checks.UpdateCheckRun(ctx, ev.Repo.Owner, ev.Repo.Name, id, github.UpdateCheckRunOptions{
			Name:       action,
			Status:     github.Ptr("completed"),
			Conclusion: github.Ptr(conclusion),
			Output:     output,
		})
		if err != nil {
			r.logger.Error("failed to update check run", "unit", ev.UnitKey(), "action", action, "id", id, "error", err)
			return "", err
		}
		return existingRef, nil
	}

	sha := ev.HeadSHA()
	if sha == "" {
		// Nothing to attach a check run to; the result only appears in logs.
		r.logger.Warn("event carries no head SHA, skipping check run", "unit", ev.UnitKey(), "action", action)
		return "", nil
	}

	run, _, err := r.client.Checks.CreateCheckRun(ctx, ev.Repo.Owner, ev.Repo.Name, github.CreateCheckRunOptions{
		Name:       action,
		HeadSHA:    sha,
		Status:     github.Ptr("completed"),
		Conclusion: github.Ptr(conclusion),
		Output:     output,
	})
	if err != nil {
		r.logger.Error("failed to create check run", "unit", ev.UnitKey(), "action", action, "error", err)
		return "", err
	}
	return strconv.FormatInt(run.GetID(), 10), nil
}

// conclusionFor maps an action status to a check-run conclusion.
func conclusionFor(status core.Status) string {
	switch status {
	case core.StatusSuccess:
		return "success"
	case core.StatusSkipped:
		return "skipped"
	case core.StatusTimedOut:
		return "timed_out"
	default:
		return "failure"
	}
}
