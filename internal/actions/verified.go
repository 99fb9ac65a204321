package actions

import (
	"context"
	"fmt"
	"slices"

	"github.com/sevigo/merge-warden/internal/core"
)

// resetVerified drops the verified label when new commits arrive: an earlier
// verification does not cover code pushed after it.
func resetVerified(ctx context.Context, ev *core.Event, _ *core.RepoPolicy, client core.PlatformClient) (string, error) {
	current, err := client.Labels(ctx, ev)
	if err != nil {
		return "", fmt.Errorf("listing labels: %w", err)
	}
	if !slices.Contains(current, verifiedLabel) {
		return "not verified", core.ErrSkipAction
	}

	if err := client.RemoveLabel(ctx, ev, verifiedLabel); err != nil {
		return "", fmt.Errorf("removing %s: %w", verifiedLabel, err)
	}
	if err := client.CreateComment(ctx, ev, "New commits invalidated the `verified` label. Please re-verify."); err != nil {
		return "", fmt.Errorf("posting reset notice: %w", err)
	}
	return "verified label reset", nil
}
