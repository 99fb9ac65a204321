package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sevigo/merge-warden/internal/core"
)

// UnitPipeline is the per-event processing sequence: resolve the repository
// policy, dispatch the action table, report. The serializer runs exactly one
// of these at a time per unit.
type UnitPipeline struct {
	resolver   core.PolicyResolver
	dispatcher *Dispatcher
	logger     *slog.Logger

	maxResolveRetries uint64
	retryInterval     time.Duration
}

// NewPipeline creates the pipeline used for every processing unit.
func NewPipeline(resolver core.PolicyResolver, dispatcher *Dispatcher, logger *slog.Logger) *UnitPipeline {
	return &UnitPipeline{
		resolver:          resolver,
		dispatcher:        dispatcher,
		logger:            logger,
		maxResolveRetries: 4,
		retryInterval:     500 * time.Millisecond,
	}
}

// Process handles one admitted event. Failures never escape: repositories
// without a policy are ignored silently, a transiently unavailable store is
// retried with bounded backoff, and anything else is logged and dropped.
func (p *UnitPipeline) Process(ctx context.Context, ev *core.Event) {
	pol, err := p.resolve(ctx, ev)
	switch {
	case errors.Is(err, core.ErrNotOnboarded):
		p.logger.Debug("ignoring event for unmonitored repository",
			"repo", ev.Repo.FullName,
			"delivery", ev.DeliveryID,
		)
		return
	case err != nil:
		p.logger.Error("giving up on event, policy unresolvable",
			"repo", ev.Repo.FullName,
			"delivery", ev.DeliveryID,
			"error", err,
		)
		return
	}

	results := p.dispatcher.Dispatch(ctx, ev, pol)
	p.logger.Info("event processed",
		"unit", ev.UnitKey(),
		"kind", ev.Kind,
		"delivery", ev.DeliveryID,
		"actions", len(results),
	)
}

// resolve fetches the policy, retrying only store outages.
func (p *UnitPipeline) resolve(ctx context.Context, ev *core.Event) (*core.RepoPolicy, error) {
	var pol *core.RepoPolicy

	operation := func() error {
		var err error
		pol, err = p.resolver.Resolve(ctx, ev.Platform, ev.Repo.FullName)
		if err != nil && !errors.Is(err, core.ErrStoreUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.retryInterval
	policy.MaxElapsedTime = 0 // bounded by retry count, not wall time

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, p.maxResolveRetries), ctx))
	if err != nil {
		return nil, err
	}
	return pol, nil
}
