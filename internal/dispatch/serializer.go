// Package dispatch contains the event-processing core: the per-unit
// serializer that admits webhook events, the pipeline that resolves policy
// and the dispatcher that runs the action table.
package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sevigo/merge-warden/internal/core"
)

// Pipeline processes one admitted event to completion, including result
// reporting. Implementations must contain their own failures: Process never
// panics through to the serializer.
type Pipeline interface {
	Process(ctx context.Context, ev *core.Event)
}

// Serializer guarantees at most one running pipeline per processing unit
// while units proceed fully in parallel. Admission is non-blocking: the
// webhook handler enqueues and returns immediately.
type Serializer struct {
	ctx      context.Context
	pipeline Pipeline
	logger   *slog.Logger

	mu      sync.Mutex
	units   map[core.UnitKey]*unit
	stopped bool
	wg      sync.WaitGroup
}

// unit holds the pending queue and the busy flag for one serialization key.
// Units are created lazily and removed once drained.
type unit struct {
	queue []*core.Event
	busy  bool
}

// NewSerializer creates a serializer whose pipelines run under the given base
// context.
func NewSerializer(ctx context.Context, pipeline Pipeline, logger *slog.Logger) *Serializer {
	return &Serializer{
		ctx:      ctx,
		pipeline: pipeline,
		logger:   logger,
		units:    make(map[core.UnitKey]*unit),
	}
}

// Admit enqueues an event for its unit and starts a pipeline goroutine if the
// unit is idle. Events admitted while the unit is busy are picked up by the
// running pipeline before it goes idle; coalescible kinds supersede older
// queued events of the same kind.
func (s *Serializer) Admit(ev *core.Event) {
	key := ev.UnitKey()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		s.logger.Warn("serializer stopped, dropping event", "unit", key, "delivery", ev.DeliveryID)
		return
	}

	u, ok := s.units[key]
	if !ok {
		u = &unit{}
		s.units[key] = u
	}

	u.queue = s.enqueue(u.queue, ev, key)

	if !u.busy {
		u.busy = true
		s.wg.Add(1)
		go s.drain(key)
	}
}

// enqueue appends ev, dropping a queued-but-not-started event of the same
// coalescible kind. The dropped event is recorded as superseded.
func (s *Serializer) enqueue(queue []*core.Event, ev *core.Event, key core.UnitKey) []*core.Event {
	if ev.Kind.Coalescible() {
		for i, queued := range queue {
			if queued.Kind == ev.Kind {
				s.logger.Info("superseding queued event",
					"unit", key,
					"kind", ev.Kind,
					"superseded_delivery", queued.DeliveryID,
					"by_delivery", ev.DeliveryID,
				)
				queue = append(queue[:i], queue[i+1:]...)
				break
			}
		}
	}
	return append(queue, ev)
}

// drain processes the unit's queue in admission order until it is empty,
// then clears the busy flag and garbage-collects the unit.
func (s *Serializer) drain(key core.UnitKey) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		u := s.units[key]
		if len(u.queue) == 0 {
			u.busy = false
			delete(s.units, key)
			s.mu.Unlock()
			return
		}
		ev := u.queue[0]
		u.queue = u.queue[1:]
		s.mu.Unlock()

		s.process(ev)
	}
}

// process runs one pipeline execution with panic containment: a fault in one
// unit must never take down the serializer or other units.
func (s *Serializer) process(ev *core.Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("pipeline panicked",
				"unit", ev.UnitKey(),
				"delivery", ev.DeliveryID,
				"panic", r,
			)
		}
	}()
	s.pipeline.Process(s.ctx, ev)
}

// Stop refuses new admissions and waits for in-flight pipelines to drain
// their queues.
func (s *Serializer) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.logger.Info("stopping serializer, waiting for active pipelines")
	s.wg.Wait()
}

// ActiveUnits returns the number of units with a queue or running pipeline.
func (s *Serializer) ActiveUnits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.units)
}
