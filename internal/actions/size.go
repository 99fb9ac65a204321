package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/sevigo/merge-warden/internal/core"
)

// sizeLabel applies a size/<bucket> label reflecting the change volume and
// removes any stale size label from earlier revisions.
func sizeLabel(ctx context.Context, ev *core.Event, _ *core.RepoPolicy, client core.PlatformClient) (string, error) {
	pr, ok := ev.Payload.(core.PullRequestPayload)
	if !ok {
		return "", fmt.Errorf("unexpected payload %T", ev.Payload)
	}

	want := sizePrefix + sizeBucket(pr.Additions+pr.Deletions)

	current, err := client.Labels(ctx, ev)
	if err != nil {
		return "", fmt.Errorf("listing labels: %w", err)
	}

	for _, label := range current {
		if label == want {
			return "already " + want, nil
		}
		if strings.HasPrefix(label, sizePrefix) {
			if err := client.RemoveLabel(ctx, ev, label); err != nil {
				return "", fmt.Errorf("removing stale %s: %w", label, err)
			}
		}
	}

	if err := client.AddLabels(ctx, ev, []string{want}); err != nil {
		return "", fmt.Errorf("adding %s: %w", want, err)
	}
	return "labeled " + want, nil
}
