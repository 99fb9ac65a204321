package actions

import (
	"time"

	"github.com/sevigo/merge-warden/internal/core"
)

// Registry returns the declared action table in tier-then-declaration order.
// The dispatcher intersects it with each repository's enabled checks; nothing
// here runs unless the policy opts in.
func Registry() []core.Action {
	return []core.Action{
		{
			Name:     "assign-reviewers",
			Mode:     core.ModeSync,
			Tier:     core.TierPolicy,
			Triggers: []core.EventKind{core.KindPullRequestOpened, core.KindComment},
			Run:      assignReviewers,
		},
		{
			Name:     "reset-verified",
			Mode:     core.ModeSync,
			Tier:     core.TierPolicy,
			Triggers: []core.EventKind{core.KindPullRequestUpdated},
			Run:      resetVerified,
		},
		{
			Name:     "comment-commands",
			Mode:     core.ModeSync,
			Tier:     core.TierPolicy,
			Triggers: []core.EventKind{core.KindComment},
			Run:      commentCommands,
		},
		{
			Name:     "track-approvals",
			Mode:     core.ModeSync,
			Tier:     core.TierPolicy,
			Triggers: []core.EventKind{core.KindReview},
			Run:      trackApprovals,
		},
		{
			Name:     "can-be-merged",
			Mode:     core.ModeSync,
			Tier:     core.TierPolicy,
			Triggers: []core.EventKind{core.KindPullRequestUpdated, core.KindReview},
			Run:      canBeMerged,
		},
		{
			Name:     "tox",
			Mode:     core.ModeDelegated,
			Tier:     core.TierPolicy,
			Triggers: []core.EventKind{core.KindPullRequestOpened, core.KindPullRequestUpdated, core.KindComment},
			Timeout:  20 * time.Minute,
			Job:      toxJob,
		},
		{
			Name:     "welcome-message",
			Mode:     core.ModeSync,
			Tier:     core.TierGeneric,
			Triggers: []core.EventKind{core.KindPullRequestOpened},
			Run:      welcomeMessage,
		},
		{
			Name:     "size-label",
			Mode:     core.ModeSync,
			Tier:     core.TierGeneric,
			Triggers: []core.EventKind{core.KindPullRequestOpened, core.KindPullRequestUpdated},
			Run:      sizeLabel,
		},
		{
			Name:     "cherry-pick",
			Mode:     core.ModeSync,
			Tier:     core.TierGeneric,
			Triggers: []core.EventKind{core.KindComment},
			Run:      cherryPick,
		},
		{
			Name:          "build-container",
			Mode:          core.ModeDelegated,
			Tier:          core.TierGeneric,
			Triggers:      []core.EventKind{core.KindPullRequestOpened, core.KindPullRequestUpdated, core.KindComment},
			Timeout:       40 * time.Minute,
			FireAndForget: true,
			Job:           buildContainerJob,
		},
	}
}
