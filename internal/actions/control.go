package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/sevigo/merge-warden/internal/core"
)

// commandLabels are the labels users may toggle with a slash command.
// Anything else stays under the control of the other actions.
var commandLabels = []string{verifiedLabel, "wip", "hold", "do-not-merge"}

func commandLabel(name string) bool {
	for _, l := range commandLabels {
		if l == name {
			return true
		}
	}
	return false
}

// commentCommands applies label slash commands from a comment: /verified adds
// the verified label, /hold adds hold, /un<label> removes the label again.
func commentCommands(ctx context.Context, ev *core.Event, _ *core.RepoPolicy, client core.PlatformClient) (string, error) {
	comment, ok := ev.Payload.(core.CommentPayload)
	if !ok {
		return "", fmt.Errorf("unexpected payload %T", ev.Payload)
	}

	var add, remove []string
	for _, cmd := range ParseCommands(comment.Body) {
		switch {
		case commandLabel(cmd.Name):
			add = append(add, cmd.Name)
		case strings.HasPrefix(cmd.Name, "un") && commandLabel(strings.TrimPrefix(cmd.Name, "un")):
			remove = append(remove, strings.TrimPrefix(cmd.Name, "un"))
		}
	}
	if len(add) == 0 && len(remove) == 0 {
		return "", core.ErrSkipAction
	}

	if len(add) > 0 {
		if err := client.AddLabels(ctx, ev, add); err != nil {
			return "", fmt.Errorf("adding labels %v: %w", add, err)
		}
	}
	for _, label := range remove {
		if err := client.RemoveLabel(ctx, ev, label); err != nil {
			return "", fmt.Errorf("removing label %s: %w", label, err)
		}
	}
	return fmt.Sprintf("added %d label(s), removed %d", len(add), len(remove)), nil
}
