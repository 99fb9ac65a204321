package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/mocks"
)

// staticProvider hands every event the same client and reporter.
type staticProvider struct {
	client   core.PlatformClient
	reporter core.Reporter
	err      error
}

func (p *staticProvider) ClientFor(_ context.Context, _ *core.Event) (core.PlatformClient, core.Reporter, error) {
	return p.client, p.reporter, p.err
}

func prOpenedEvent() *core.Event {
	return &core.Event{
		Platform:   core.PlatformGitHub,
		Kind:       core.KindPullRequestOpened,
		Repo:       core.Repo{Owner: "org", Name: "repo", FullName: "org/repo"},
		Unit:       12,
		Actor:      "octocat",
		DeliveryID: "d-1",
		Payload:    core.PullRequestPayload{Title: "fix", HeadSHA: "abc123"},
	}
}

func policyWith(checks ...string) *core.RepoPolicy {
	return &core.RepoPolicy{EnabledChecks: checks}
}

func TestDispatcher_PriorityOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporter := mocks.NewMockReporter(ctrl)
	client := mocks.NewMockPlatformClient(ctrl)

	var order []string
	record := func(name string) core.ActionFunc {
		return func(context.Context, *core.Event, *core.RepoPolicy, core.PlatformClient) (string, error) {
			order = append(order, name)
			return "ok", nil
		}
	}

	// Declared generic-first to prove tier ordering, not declaration order,
	// decides execution.
	actions := []core.Action{
		{Name: "label-style", Tier: core.TierGeneric, Triggers: []core.EventKind{core.KindPullRequestOpened}, Run: record("label-style")},
		{Name: "lint", Tier: core.TierPolicy, Triggers: []core.EventKind{core.KindPullRequestOpened}, Run: record("lint")},
	}

	reporter.EXPECT().
		ReportCheck(gomock.Any(), gomock.Any(), "lint", core.StatusSuccess, "ok", "").
		Return("r-lint", nil)
	reporter.EXPECT().
		ReportCheck(gomock.Any(), gomock.Any(), "label-style", core.StatusSuccess, "ok", "").
		Return("r-style", nil)

	d := NewDispatcher(actions, mocks.NewMockJobRunner(ctrl), &staticProvider{client: client, reporter: reporter}, testLogger())
	results := d.Dispatch(context.Background(), prOpenedEvent(), policyWith("lint", "label-style"))

	require.Len(t, results, 2)
	assert.Equal(t, []string{"lint", "label-style"}, order)
	assert.Equal(t, "lint", results[0].Action)
	assert.Equal(t, "r-lint", results[0].ReportRef)
}

func TestDispatcher_DisabledChecksAreNotSelected(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporter := mocks.NewMockReporter(ctrl)
	client := mocks.NewMockPlatformClient(ctrl)

	ran := false
	actions := []core.Action{{
		Name:     "lint",
		Triggers: []core.EventKind{core.KindPullRequestOpened},
		Run: func(context.Context, *core.Event, *core.RepoPolicy, core.PlatformClient) (string, error) {
			ran = true
			return "", nil
		},
	}}

	d := NewDispatcher(actions, mocks.NewMockJobRunner(ctrl), &staticProvider{client: client, reporter: reporter}, testLogger())
	results := d.Dispatch(context.Background(), prOpenedEvent(), policyWith("something-else"))

	assert.Empty(t, results)
	assert.False(t, ran)
}

func TestDispatcher_ActionFailureDoesNotStopSiblings(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporter := mocks.NewMockReporter(ctrl)
	client := mocks.NewMockPlatformClient(ctrl)

	actions := []core.Action{
		{Name: "first", Triggers: []core.EventKind{core.KindPullRequestOpened},
			Run: func(context.Context, *core.Event, *core.RepoPolicy, core.PlatformClient) (string, error) {
				return "", errors.New("api exploded")
			}},
		{Name: "second", Triggers: []core.EventKind{core.KindPullRequestOpened},
			Run: func(context.Context, *core.Event, *core.RepoPolicy, core.PlatformClient) (string, error) {
				return "done", nil
			}},
	}

	reporter.EXPECT().ReportCheck(gomock.Any(), gomock.Any(), "first", core.StatusFailure, "api exploded", "").Return("r1", nil)
	reporter.EXPECT().ReportCheck(gomock.Any(), gomock.Any(), "second", core.StatusSuccess, "done", "").Return("r2", nil)

	d := NewDispatcher(actions, mocks.NewMockJobRunner(ctrl), &staticProvider{client: client, reporter: reporter}, testLogger())
	results := d.Dispatch(context.Background(), prOpenedEvent(), policyWith("first", "second"))

	require.Len(t, results, 2)
	assert.Equal(t, core.StatusFailure, results[0].Status)
	assert.Equal(t, core.StatusSuccess, results[1].Status)
}

func TestDispatcher_PanickingActionIsContained(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporter := mocks.NewMockReporter(ctrl)
	client := mocks.NewMockPlatformClient(ctrl)

	actions := []core.Action{
		{Name: "faulty", Triggers: []core.EventKind{core.KindPullRequestOpened},
			Run: func(context.Context, *core.Event, *core.RepoPolicy, core.PlatformClient) (string, error) {
				panic("nil map write")
			}},
		{Name: "steady", Triggers: []core.EventKind{core.KindPullRequestOpened},
			Run: func(context.Context, *core.Event, *core.RepoPolicy, core.PlatformClient) (string, error) {
				return "fine", nil
			}},
	}

	reporter.EXPECT().ReportCheck(gomock.Any(), gomock.Any(), "faulty", core.StatusFailure, gomock.Any(), "").Return("r1", nil)
	reporter.EXPECT().ReportCheck(gomock.Any(), gomock.Any(), "steady", core.StatusSuccess, "fine", "").Return("r2", nil)

	d := NewDispatcher(actions, mocks.NewMockJobRunner(ctrl), &staticProvider{client: client, reporter: reporter}, testLogger())
	results := d.Dispatch(context.Background(), prOpenedEvent(), policyWith("faulty", "steady"))

	require.Len(t, results, 2)
	assert.Equal(t, core.StatusFailure, results[0].Status)
	assert.Contains(t, results[0].Detail, "internal error")
	assert.Equal(t, core.StatusSuccess, results[1].Status)
}

func TestDispatcher_SkippedAction(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporter := mocks.NewMockReporter(ctrl)
	client := mocks.NewMockPlatformClient(ctrl)

	actions := []core.Action{{
		Name:     "can-be-merged",
		Triggers: []core.EventKind{core.KindPullRequestOpened},
		Run: func(context.Context, *core.Event, *core.RepoPolicy, core.PlatformClient) (string, error) {
			return "draft pull request", core.ErrSkipAction
		},
	}}

	reporter.EXPECT().ReportCheck(gomock.Any(), gomock.Any(), "can-be-merged", core.StatusSkipped, "draft pull request", "").Return("r1", nil)

	d := NewDispatcher(actions, mocks.NewMockJobRunner(ctrl), &staticProvider{client: client, reporter: reporter}, testLogger())
	results := d.Dispatch(context.Background(), prOpenedEvent(), policyWith("can-be-merged"))

	require.Len(t, results, 1)
	assert.Equal(t, core.StatusSkipped, results[0].Status)
}

func TestDispatcher_IdempotentReporting(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporter := mocks.NewMockReporter(ctrl)
	client := mocks.NewMockPlatformClient(ctrl)

	actions := []core.Action{{
		Name:     "lint",
		Triggers: []core.EventKind{core.KindPullRequestOpened, core.KindPullRequestUpdated},
		Run: func(context.Context, *core.Event, *core.RepoPolicy, core.PlatformClient) (string, error) {
			return "ok", nil
		},
	}}

	gomock.InOrder(
		reporter.EXPECT().
			ReportCheck(gomock.Any(), gomock.Any(), "lint", core.StatusSuccess, "ok", "").
			Return("check-101", nil),
		// The second dispatch for the same unit must update check-101, not
		// create a second report.
		reporter.EXPECT().
			ReportCheck(gomock.Any(), gomock.Any(), "lint", core.StatusSuccess, "ok", "check-101").
			Return("check-101", nil),
	)

	d := NewDispatcher(actions, mocks.NewMockJobRunner(ctrl), &staticProvider{client: client, reporter: reporter}, testLogger())
	pol := policyWith("lint")

	opened := prOpenedEvent()
	d.Dispatch(context.Background(), opened, pol)

	updated := prOpenedEvent()
	updated.Kind = core.KindPullRequestUpdated
	updated.DeliveryID = "d-2"
	results := d.Dispatch(context.Background(), updated, pol)

	require.Len(t, results, 1)
	assert.Equal(t, "check-101", results[0].ReportRef)
}

func TestDispatcher_ClosedUnitDropsReportRefs(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporter := mocks.NewMockReporter(ctrl)
	client := mocks.NewMockPlatformClient(ctrl)

	actions := []core.Action{{
		Name:     "lint",
		Triggers: []core.EventKind{core.KindPullRequestOpened, core.KindPullRequestUpdated},
		Run: func(context.Context, *core.Event, *core.RepoPolicy, core.PlatformClient) (string, error) {
			return "ok", nil
		},
	}}

	gomock.InOrder(
		reporter.EXPECT().
			ReportCheck(gomock.Any(), gomock.Any(), "lint", core.StatusSuccess, "ok", "").
			Return("check-101", nil),
		// After the unit closed its ref is gone: the next dispatch starts a
		// fresh report instead of updating check-101.
		reporter.EXPECT().
			ReportCheck(gomock.Any(), gomock.Any(), "lint", core.StatusSuccess, "ok", "").
			Return("check-102", nil),
	)

	d := NewDispatcher(actions, mocks.NewMockJobRunner(ctrl), &staticProvider{client: client, reporter: reporter}, testLogger())
	pol := policyWith("lint")

	d.Dispatch(context.Background(), prOpenedEvent(), pol)

	closed := prOpenedEvent()
	closed.Kind = core.KindPullRequestClosed
	closed.DeliveryID = "d-2"
	d.Dispatch(context.Background(), closed, pol)

	reopened := prOpenedEvent()
	reopened.DeliveryID = "d-3"
	results := d.Dispatch(context.Background(), reopened, pol)

	require.Len(t, results, 1)
	assert.Equal(t, "check-102", results[0].ReportRef)
}

func TestDispatcher_DelegatedAwaited(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporter := mocks.NewMockReporter(ctrl)
	client := mocks.NewMockPlatformClient(ctrl)
	runner := mocks.NewMockJobRunner(ctrl)

	actions := []core.Action{{
		Name:     "tox",
		Mode:     core.ModeDelegated,
		Triggers: []core.EventKind{core.KindPullRequestUpdated},
		Timeout:  time.Minute,
		Job: func(*core.Event, *core.RepoPolicy) (core.JobSpec, bool) {
			return core.JobSpec{Name: "tox", Image: "quay.io/warden/tox"}, true
		},
	}}

	runner.EXPECT().
		Run(gomock.Any(), gomock.Any()).
		Return(core.JobOutcome{ExitCode: 1, LogSummary: "2 tests failed"}, nil)
	reporter.EXPECT().
		ReportCheck(gomock.Any(), gomock.Any(), "tox", core.StatusFailure, gomock.Any(), "").
		Return("r1", nil)

	ev := prOpenedEvent()
	ev.Kind = core.KindPullRequestUpdated

	d := NewDispatcher(actions, runner, &staticProvider{client: client, reporter: reporter}, testLogger())
	results := d.Dispatch(context.Background(), ev, policyWith("tox"))

	require.Len(t, results, 1)
	assert.Equal(t, core.StatusFailure, results[0].Status)
	assert.Contains(t, results[0].Detail, "exit code 1")
}

func TestDispatcher_DelegatedTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporter := mocks.NewMockReporter(ctrl)
	client := mocks.NewMockPlatformClient(ctrl)
	runner := mocks.NewMockJobRunner(ctrl)

	actions := []core.Action{{
		Name:     "tox",
		Mode:     core.ModeDelegated,
		Triggers: []core.EventKind{core.KindPullRequestUpdated},
		Timeout:  50 * time.Millisecond,
		Job: func(*core.Event, *core.RepoPolicy) (core.JobSpec, bool) {
			return core.JobSpec{Name: "tox", Image: "quay.io/warden/tox"}, true
		},
	}}

	runner.EXPECT().
		Run(gomock.Any(), gomock.Any()).
		Return(core.JobOutcome{}, core.ErrJobTimeout)
	reporter.EXPECT().
		ReportCheck(gomock.Any(), gomock.Any(), "tox", core.StatusTimedOut, gomock.Any(), "").
		Return("r1", nil)

	ev := prOpenedEvent()
	ev.Kind = core.KindPullRequestUpdated

	d := NewDispatcher(actions, runner, &staticProvider{client: client, reporter: reporter}, testLogger())
	results := d.Dispatch(context.Background(), ev, policyWith("tox"))

	require.Len(t, results, 1)
	assert.Equal(t, core.StatusTimedOut, results[0].Status)
}

func TestDispatcher_DelegatedUnconfiguredJobIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporter := mocks.NewMockReporter(ctrl)
	client := mocks.NewMockPlatformClient(ctrl)
	runner := mocks.NewMockJobRunner(ctrl) // Run must never be called

	actions := []core.Action{{
		Name:     "build-container",
		Mode:     core.ModeDelegated,
		Triggers: []core.EventKind{core.KindPullRequestUpdated},
		Job: func(*core.Event, *core.RepoPolicy) (core.JobSpec, bool) {
			return core.JobSpec{}, false
		},
	}}

	reporter.EXPECT().
		ReportCheck(gomock.Any(), gomock.Any(), "build-container", core.StatusSkipped, gomock.Any(), "").
		Return("r1", nil)

	ev := prOpenedEvent()
	ev.Kind = core.KindPullRequestUpdated

	d := NewDispatcher(actions, runner, &staticProvider{client: client, reporter: reporter}, testLogger())
	results := d.Dispatch(context.Background(), ev, policyWith("build-container"))

	require.Len(t, results, 1)
	assert.Equal(t, core.StatusSkipped, results[0].Status)
}

func TestDispatcher_FireAndForgetReportsOnCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporter := mocks.NewMockReporter(ctrl)
	client := mocks.NewMockPlatformClient(ctrl)
	runner := mocks.NewMockJobRunner(ctrl)

	actions := []core.Action{{
		Name:          "build-container",
		Mode:          core.ModeDelegated,
		FireAndForget: true,
		Triggers:      []core.EventKind{core.KindPullRequestUpdated},
		Job: func(*core.Event, *core.RepoPolicy) (core.JobSpec, bool) {
			return core.JobSpec{Name: "build-container", Image: "quay.io/warden/builder"}, true
		},
	}}

	reported := make(chan struct{})
	runner.EXPECT().
		Run(gomock.Any(), gomock.Any()).
		Return(core.JobOutcome{ExitCode: 0, LogSummary: "image pushed"}, nil)
	reporter.EXPECT().
		ReportCheck(gomock.Any(), gomock.Any(), "build-container", core.StatusSuccess, gomock.Any(), "").
		DoAndReturn(func(context.Context, *core.Event, string, core.Status, string, string) (string, error) {
			close(reported)
			return "r1", nil
		})

	ev := prOpenedEvent()
	ev.Kind = core.KindPullRequestUpdated

	d := NewDispatcher(actions, runner, &staticProvider{client: client, reporter: reporter}, testLogger())
	results := d.Dispatch(context.Background(), ev, policyWith("build-container"))

	// The dispatch itself returns immediately with a launch notice.
	require.Len(t, results, 1)
	assert.Equal(t, core.StatusSkipped, results[0].Status)

	select {
	case <-reported:
	case <-time.After(2 * time.Second):
		t.Fatal("deferred job result was never reported")
	}
}

func TestDispatcher_ClientProviderFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	actions := []core.Action{{
		Name:     "lint",
		Triggers: []core.EventKind{core.KindPullRequestOpened},
		Run: func(context.Context, *core.Event, *core.RepoPolicy, core.PlatformClient) (string, error) {
			return "", nil
		},
	}}

	d := NewDispatcher(actions, mocks.NewMockJobRunner(ctrl), &staticProvider{err: errors.New("no installation")}, testLogger())
	results := d.Dispatch(context.Background(), prOpenedEvent(), policyWith("lint"))

	assert.Nil(t, results)
}
