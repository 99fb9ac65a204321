package actions

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sevigo/merge-warden/internal/core"
)

// canBeMerged evaluates merge readiness from the labels on the pull request
// and maintains the can-be-merged label accordingly. Blocking labels veto,
// required check labels must all be present, then approved-* labels are
// counted against the policy minimum.
func canBeMerged(ctx context.Context, ev *core.Event, pol *core.RepoPolicy, client core.PlatformClient) (string, error) {
	if ev.Unit == 0 {
		return "no pull request context", core.ErrSkipAction
	}

	current, err := client.Labels(ctx, ev)
	if err != nil {
		return "", fmt.Errorf("listing labels: %w", err)
	}

	ready, detail := evaluateReadiness(current, pol.BranchProtection)
	has := slices.Contains(current, canBeMergedLabel)

	switch {
	case ready && !has:
		if err := client.AddLabels(ctx, ev, []string{canBeMergedLabel}); err != nil {
			return "", fmt.Errorf("adding %s: %w", canBeMergedLabel, err)
		}
	case !ready && has:
		if err := client.RemoveLabel(ctx, ev, canBeMergedLabel); err != nil {
			return "", fmt.Errorf("removing %s: %w", canBeMergedLabel, err)
		}
	}
	return detail, nil
}

// evaluateReadiness applies the label-based merge gate. Required checks are
// label names the policy demands, typically verified or a job's success label.
func evaluateReadiness(labels []string, protection core.BranchProtection) (bool, string) {
	for _, label := range labels {
		if slices.Contains(blockingLabels, strings.ToLower(label)) {
			return false, "blocked by label " + label
		}
	}

	for _, required := range protection.RequiredChecks {
		if !slices.Contains(labels, required) {
			return false, "missing required label " + required
		}
	}

	approvals := 0
	for _, label := range labels {
		if strings.HasPrefix(label, approvedPrefix) {
			approvals++
		}
	}
	if approvals < protection.MinApprovals {
		return false, fmt.Sprintf("%d of %d required approvals", approvals, protection.MinApprovals)
	}
	return true, fmt.Sprintf("ready with %d approvals", approvals)
}
