package actions

import (
	"context"
	"fmt"

	"github.com/sevigo/merge-warden/internal/core"
)

// cherryPick acknowledges a /cherry-pick command. The pick itself happens
// after the pull request merges; this action validates the request and
// records the target branch on the conversation.
func cherryPick(ctx context.Context, ev *core.Event, _ *core.RepoPolicy, client core.PlatformClient) (string, error) {
	comment, ok := ev.Payload.(core.CommentPayload)
	if !ok {
		return "", fmt.Errorf("unexpected payload %T", ev.Payload)
	}

	var targets []string
	for _, cmd := range ParseCommands(comment.Body) {
		if cmd.Name != "cherry-pick" {
			continue
		}
		if len(cmd.Args) == 0 {
			if err := client.CreateComment(ctx, ev, "Usage: `/cherry-pick <target-branch>`"); err != nil {
				return "", fmt.Errorf("posting usage hint: %w", err)
			}
			return "cherry-pick without target", nil
		}
		targets = append(targets, cmd.Args...)
	}
	if len(targets) == 0 {
		return "", core.ErrSkipAction
	}

	for _, target := range targets {
		msg := fmt.Sprintf("Cherry-pick to `%s` noted. It will be attempted once this pull request merges.", target)
		if err := client.CreateComment(ctx, ev, msg); err != nil {
			return "", fmt.Errorf("acknowledging cherry-pick: %w", err)
		}
	}
	return fmt.Sprintf("noted %d cherry-pick target(s)", len(targets)), nil
}
