package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/sevigo/merge-warden/internal/core"
)

// assignReviewers requests the policy's reviewers and assigns the author. It
// runs on newly opened pull requests and again on the /assign-reviewers
// command.
func assignReviewers(ctx context.Context, ev *core.Event, pol *core.RepoPolicy, client core.PlatformClient) (string, error) {
	if ev.Kind == core.KindComment {
		comment, ok := ev.Payload.(core.CommentPayload)
		if !ok || !HasCommand(comment.Body, "assign-reviewers") {
			return "", core.ErrSkipAction
		}
	}

	if len(pol.Reviewers) == 0 {
		return "no reviewers configured", core.ErrSkipAction
	}

	// The author cannot review their own pull request.
	reviewers := make([]string, 0, len(pol.Reviewers))
	for _, r := range pol.Reviewers {
		if !strings.EqualFold(r, ev.Actor) {
			reviewers = append(reviewers, r)
		}
	}
	if len(reviewers) == 0 {
		return "author is the only configured reviewer", core.ErrSkipAction
	}

	if err := client.RequestReviewers(ctx, ev, reviewers); err != nil {
		return "", fmt.Errorf("requesting reviewers: %w", err)
	}
	if ev.Kind == core.KindPullRequestOpened {
		if err := client.AddAssignees(ctx, ev, []string{ev.Actor}); err != nil {
			return "", fmt.Errorf("assigning author: %w", err)
		}
	}
	return fmt.Sprintf("requested %s", strings.Join(reviewers, ", ")), nil
}
