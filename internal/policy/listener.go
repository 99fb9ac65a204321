package policy

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/sevigo/merge-warden/internal/core"
)

const notifyChannel = "policy_changed"

// Listener subscribes to the policy_changed PostgreSQL channel and feeds
// invalidation signals into the resolver. Notification payloads have the form
// "<platform>:<repo_full_name>".
type Listener struct {
	pq       *pq.Listener
	resolver core.PolicyResolver
	logger   *slog.Logger
}

// NewListener creates a LISTEN/NOTIFY subscription on the given DSN.
func NewListener(dsn string, resolver core.PolicyResolver, logger *slog.Logger) (*Listener, error) {
	l := pq.NewListener(dsn, 10*time.Second, time.Minute, func(_ pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("policy listener connection event", "error", err)
		}
	})
	if err := l.Listen(notifyChannel); err != nil {
		_ = l.Close()
		return nil, err
	}
	return &Listener{pq: l, resolver: resolver, logger: logger}, nil
}

// Run consumes notifications until the context is cancelled. A nil
// notification (connection re-established) flushes nothing: stale cache
// entries are bounded by the next change notification, and lib/pq replays
// none, so the periodic Ping keeps the connection honest.
func (l *Listener) Run(ctx context.Context) {
	defer func() {
		if err := l.pq.Close(); err != nil {
			l.logger.Error("failed to close policy listener", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-l.pq.Notify:
			if n == nil {
				continue
			}
			l.handle(n.Extra)
		case <-time.After(90 * time.Second):
			if err := l.pq.Ping(); err != nil {
				l.logger.Warn("policy listener ping failed", "error", err)
			}
		}
	}
}

func (l *Listener) handle(payload string) {
	platform, repo, ok := strings.Cut(payload, ":")
	if !ok {
		l.logger.Warn("ignoring malformed policy notification", "payload", payload)
		return
	}
	l.resolver.Invalidate(core.Platform(platform), repo)
}
