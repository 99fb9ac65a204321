package actions

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sevigo/merge-warden/internal/core"
)

// trackApprovals mirrors review state into approved-<reviewer> labels so the
// merge gate can count approvals without replaying review history. Only
// reviewers listed as approvers in the policy count.
func trackApprovals(ctx context.Context, ev *core.Event, pol *core.RepoPolicy, client core.PlatformClient) (string, error) {
	review, ok := ev.Payload.(core.ReviewPayload)
	if !ok {
		return "", fmt.Errorf("unexpected payload %T", ev.Payload)
	}

	if !slices.ContainsFunc(pol.Approvers, func(a string) bool {
		return strings.EqualFold(a, review.Reviewer)
	}) {
		return review.Reviewer + " is not a configured approver", core.ErrSkipAction
	}

	label := approvedPrefix + strings.ToLower(review.Reviewer)
	switch review.State {
	case "approved":
		if err := client.AddLabels(ctx, ev, []string{label}); err != nil {
			return "", fmt.Errorf("adding %s: %w", label, err)
		}
		return "approval recorded for " + review.Reviewer, nil
	case "changes_requested", "dismissed", "unapproved":
		if err := client.RemoveLabel(ctx, ev, label); err != nil {
			return "", fmt.Errorf("removing %s: %w", label, err)
		}
		return "approval withdrawn for " + review.Reviewer, nil
	default:
		return "review state " + review.State, core.ErrSkipAction
	}
}
