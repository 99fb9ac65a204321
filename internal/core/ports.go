package core

import "context"

// Reporter delivers check/status results back to the originating platform.
// Reporting is idempotent per (unit, action): when existingRef is non-empty
// the implementation updates that report instead of creating a new one, and
// returns the ref to use for subsequent updates.
//
//go:generate mockgen -destination=../../mocks/mock_reporter.go -package=mocks . Reporter
type Reporter interface {
	ReportCheck(ctx context.Context, ev *Event, action string, status Status, detail, existingRef string) (string, error)
}

// PlatformClient is the slice of the platform API the built-in actions need.
// GitHub and GitLab each provide an implementation; actions stay
// platform-neutral.
//
//go:generate mockgen -destination=../../mocks/mock_platform_client.go -package=mocks . PlatformClient
type PlatformClient interface {
	Labels(ctx context.Context, ev *Event) ([]string, error)
	AddLabels(ctx context.Context, ev *Event, labels []string) error
	RemoveLabel(ctx context.Context, ev *Event, label string) error
	CreateComment(ctx context.Context, ev *Event, body string) error
	AddAssignees(ctx context.Context, ev *Event, users []string) error
	RequestReviewers(ctx context.Context, ev *Event, users []string) error
}

// ClientProvider hands out a PlatformClient and Reporter for the platform an
// event came from. GitHub clients are minted per installation; GitLab uses a
// single token client.
type ClientProvider interface {
	ClientFor(ctx context.Context, ev *Event) (PlatformClient, Reporter, error)
}
