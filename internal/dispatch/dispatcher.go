package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sevigo/merge-warden/internal/core"
)

// Dispatcher runs the declared action table against a resolved event. Action
// failures are isolated: one failing action never prevents its siblings from
// running, and every outcome is reported idempotently per (unit, action).
type Dispatcher struct {
	actions []core.Action
	runner  core.JobRunner
	clients core.ClientProvider
	logger  *slog.Logger

	// refs remembers external report handles so repeated dispatches update
	// the existing report instead of creating a duplicate.
	mu   sync.Mutex
	refs map[string]string
}

// NewDispatcher creates a dispatcher over the declared action table.
func NewDispatcher(actions []core.Action, runner core.JobRunner, clients core.ClientProvider, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		actions: actions,
		runner:  runner,
		clients: clients,
		logger:  logger,
		refs:    make(map[string]string),
	}
}

// Dispatch selects the applicable actions for the event, runs them in
// declared priority order and reports each result. The returned slice is in
// execution order.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *core.Event, pol *core.RepoPolicy) []core.ActionResult {
	if ev.Kind == core.KindPullRequestClosed {
		d.dropRefs(ev.UnitKey())
	}

	applicable := d.selectActions(ev.Kind, pol)
	if len(applicable) == 0 {
		return nil
	}

	client, reporter, err := d.clients.ClientFor(ctx, ev)
	if err != nil {
		d.logger.Error("no platform client for event", "unit", ev.UnitKey(), "error", err)
		return nil
	}

	results := make([]core.ActionResult, 0, len(applicable))
	for _, action := range applicable {
		var res core.ActionResult
		switch action.Mode {
		case core.ModeDelegated:
			res = d.runDelegated(ctx, action, ev, pol, reporter)
		default:
			res = d.runSync(ctx, action, ev, pol, client)
		}

		// Fire-and-forget actions report asynchronously on job completion.
		if !(action.Mode == core.ModeDelegated && action.FireAndForget) {
			res.ReportRef = d.report(ctx, reporter, ev, res)
		}
		results = append(results, res)

		d.logger.Info("action finished",
			"unit", ev.UnitKey(),
			"action", action.Name,
			"status", res.Status,
		)
	}
	return results
}

// selectActions intersects the event kind's triggers with the policy's
// enabled checks, ordered by tier and then declaration order.
func (d *Dispatcher) selectActions(kind core.EventKind, pol *core.RepoPolicy) []core.Action {
	var out []core.Action
	for _, a := range d.actions {
		if a.Triggered(kind) && pol.CheckEnabled(a.Name) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out
}

// runSync executes an inline action with panic containment.
func (d *Dispatcher) runSync(ctx context.Context, action core.Action, ev *core.Event, pol *core.RepoPolicy, client core.PlatformClient) (res core.ActionResult) {
	res = core.ActionResult{Action: action.Name}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("action panicked", "action", action.Name, "unit", ev.UnitKey(), "panic", r)
			res.Status = core.StatusFailure
			res.Detail = fmt.Sprintf("internal error: %v", r)
		}
	}()

	detail, err := action.Run(ctx, ev, pol, client)
	switch {
	case errors.Is(err, core.ErrSkipAction):
		res.Status = core.StatusSkipped
		res.Detail = detail
		if res.Detail == "" {
			res.Detail = err.Error()
		}
	case err != nil:
		res.Status = core.StatusFailure
		res.Detail = err.Error()
	default:
		res.Status = core.StatusSuccess
		res.Detail = detail
	}
	return res
}

// runDelegated submits the action's job to the runner. Awaited jobs block up
// to the action timeout; fire-and-forget jobs return Skipped immediately and
// report their eventual outcome through the same idempotent path.
func (d *Dispatcher) runDelegated(ctx context.Context, action core.Action, ev *core.Event, pol *core.RepoPolicy, reporter core.Reporter) core.ActionResult {
	spec, ok := action.Job(ev, pol)
	if !ok {
		return core.ActionResult{
			Action: action.Name,
			Status: core.StatusSkipped,
			Detail: "not configured for this repository",
		}
	}
	if spec.Timeout == 0 {
		spec.Timeout = action.Timeout
	}

	if action.FireAndForget {
		// Detach from the pipeline's cancellation: the job outlives this
		// event's processing.
		jobCtx := context.WithoutCancel(ctx)
		go func() {
			res := d.await(jobCtx, action, spec)
			res.ReportRef = d.report(jobCtx, reporter, ev, res)
			d.logger.Info("deferred job reported",
				"unit", ev.UnitKey(),
				"action", action.Name,
				"status", res.Status,
			)
		}()
		return core.ActionResult{
			Action: action.Name,
			Status: core.StatusSkipped,
			Detail: "job launched, result reported on completion",
		}
	}

	return d.await(ctx, action, spec)
}

// await runs a job to completion and maps the outcome to an ActionResult.
func (d *Dispatcher) await(ctx context.Context, action core.Action, spec core.JobSpec) core.ActionResult {
	res := core.ActionResult{Action: action.Name}

	runCtx := ctx
	if action.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, action.Timeout)
		defer cancel()
	}

	outcome, err := d.runner.Run(runCtx, spec)
	switch {
	case errors.Is(err, core.ErrJobTimeout):
		res.Status = core.StatusTimedOut
		res.Detail = fmt.Sprintf("job exceeded %s", action.Timeout)
	case err != nil:
		res.Status = core.StatusFailure
		res.Detail = err.Error()
	case outcome.ExitCode != 0:
		res.Status = core.StatusFailure
		res.Detail = fmt.Sprintf("exit code %d: %s", outcome.ExitCode, outcome.LogSummary)
	default:
		res.Status = core.StatusSuccess
		res.Detail = outcome.LogSummary
	}
	return res
}

// dropRefs forgets the report refs of a closed unit. A reopened unit starts
// fresh reports; without this the refs map grows for the process lifetime.
func (d *Dispatcher) dropRefs(key core.UnitKey) {
	prefix := key.String() + "/"

	d.mu.Lock()
	defer d.mu.Unlock()
	for k := range d.refs {
		if strings.HasPrefix(k, prefix) {
			delete(d.refs, k)
		}
	}
}

// report sends the result to the platform, reusing a previously issued
// report reference for the (unit, action) pair so repeats update in place.
func (d *Dispatcher) report(ctx context.Context, reporter core.Reporter, ev *core.Event, res core.ActionResult) string {
	key := ev.UnitKey().String() + "/" + res.Action

	d.mu.Lock()
	existing := d.refs[key]
	d.mu.Unlock()

	reportCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ref, err := reporter.ReportCheck(reportCtx, ev, res.Action, res.Status, res.Detail, existing)
	if err != nil {
		d.logger.Error("failed to report action result",
			"unit", ev.UnitKey(),
			"action", res.Action,
			"error", err,
		)
		return existing
	}

	d.mu.Lock()
	d.refs[key] = ref
	d.mu.Unlock()
	return ref
}
