package actions

import (
	"context"
	"fmt"

	"github.com/sevigo/merge-warden/internal/core"
)

const welcomeTemplate = `Thanks for the contribution, @%s!

The automation on this repository understands the following commands:

* ` + "`/retest tox`" + ` rerun the tox check
* ` + "`/retest build-container`" + ` rerun the container build
* ` + "`/assign-reviewers`" + ` re-request the configured reviewers
* ` + "`/cherry-pick <branch>`" + ` schedule a cherry-pick after merge
* ` + "`/verified`" + `, ` + "`/hold`" + `, ` + "`/wip`" + ` set the matching label, ` + "`/un<label>`" + ` removes it

Approvals from the configured approvers set the ` + "`can-be-merged`" + ` label automatically.`

// welcomeMessage greets the author of a newly opened pull request with the
// list of supported commands.
func welcomeMessage(ctx context.Context, ev *core.Event, _ *core.RepoPolicy, client core.PlatformClient) (string, error) {
	pr, ok := ev.Payload.(core.PullRequestPayload)
	if !ok {
		return "", fmt.Errorf("unexpected payload %T", ev.Payload)
	}
	if err := client.CreateComment(ctx, ev, fmt.Sprintf(welcomeTemplate, pr.Author)); err != nil {
		return "", fmt.Errorf("posting welcome comment: %w", err)
	}
	return "welcomed " + pr.Author, nil
}
