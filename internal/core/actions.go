package core

import (
	"context"
	"time"
)

// Mode says where an action's work happens.
type Mode string

const (
	// ModeSync actions execute inline in the unit pipeline.
	ModeSync Mode = "sync"
	// ModeDelegated actions hand a JobSpec to the job runner.
	ModeDelegated Mode = "delegated"
)

// Tier orders actions: repository-policy actions run before generic ones.
// Within a tier, declaration order is preserved.
type Tier int

const (
	TierPolicy Tier = iota
	TierGeneric
)

// Status is the outcome of running an action against an event.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailure  Status = "failure"
	StatusSkipped  Status = "skipped"
	StatusTimedOut Status = "timed_out"
)

// ActionFunc is the body of a synchronous action. It returns a human-readable
// detail string. Returning ErrSkipAction (possibly wrapped) yields a Skipped
// result; any other error yields a Failure isolated to this action.
type ActionFunc func(ctx context.Context, ev *Event, pol *RepoPolicy, client PlatformClient) (string, error)

// JobSpecFunc builds the job specification for a delegated action. The
// second return value is false when the policy does not enable the job for
// this repository, producing a Skipped result.
type JobSpecFunc func(ev *Event, pol *RepoPolicy) (JobSpec, bool)

// Action is a named, idempotent unit of work declared in the action table.
// Actions are data-first: the dispatcher evaluates the descriptor fields, it
// never inspects the functions.
type Action struct {
	Name     string
	Mode     Mode
	Tier     Tier
	Triggers []EventKind

	// Timeout bounds a delegated job. Mandatory for ModeDelegated.
	Timeout time.Duration

	// FireAndForget delegated actions return Skipped immediately and report
	// the job outcome asynchronously once the runner signals completion.
	FireAndForget bool

	Run ActionFunc  // ModeSync only
	Job JobSpecFunc // ModeDelegated only
}

// Triggered reports whether the action reacts to the given event kind.
func (a Action) Triggered(kind EventKind) bool {
	for _, k := range a.Triggers {
		if k == kind {
			return true
		}
	}
	return false
}

// ActionResult is the outcome of one action for one event.
type ActionResult struct {
	Action string
	Status Status
	Detail string

	// ReportRef is the external report handle (for example a check-run ID)
	// used to update rather than duplicate the visible report.
	ReportRef string
}
