package core

import "context"

// RepoPolicy is the resolved configuration for one onboarded repository. It
// is loaded from the policy store, cached per repository, and invalidated as
// a whole on change; callers never observe a partially updated policy.
type RepoPolicy struct {
	// EnabledChecks lists action names allowed to run for this repository.
	EnabledChecks []string `yaml:"enabled_checks"`

	Reviewers []string `yaml:"reviewers"`
	Approvers []string `yaml:"approvers"`

	BranchProtection BranchProtection `yaml:"branch_protection"`

	// Container job definitions.
	Tox            ToxJob       `yaml:"tox"`
	BuildContainer ContainerJob `yaml:"build_container"`
}

// BranchProtection is the merge-readiness policy.
type BranchProtection struct {
	MinApprovals   int      `yaml:"min_approvals"`
	RequiredChecks []string `yaml:"required_checks"`
}

// ToxJob configures the tox check job. Targets "all" (or empty) runs the
// full suite; anything else is passed as -e targets.
type ToxJob struct {
	Enabled bool   `yaml:"enabled"`
	Image   string `yaml:"image"`
	Targets string `yaml:"targets"`
}

// ContainerJob configures the build-container job.
type ContainerJob struct {
	Enabled    bool   `yaml:"enabled"`
	Image      string `yaml:"image"`
	Dockerfile string `yaml:"dockerfile"`
}

// CheckEnabled reports whether the named action may run for this repository.
func (p *RepoPolicy) CheckEnabled(name string) bool {
	for _, c := range p.EnabledChecks {
		if c == name {
			return true
		}
	}
	return false
}

// PolicyStore is the external configuration store. Implementations return
// ErrNotOnboarded for repositories without a registered policy and
// ErrStoreUnavailable when the backend cannot be reached.
type PolicyStore interface {
	GetPolicy(ctx context.Context, platform Platform, repoFullName string) (*RepoPolicy, error)
}

// PolicyResolver yields cached policies and accepts invalidation signals.
type PolicyResolver interface {
	Resolve(ctx context.Context, platform Platform, repoFullName string) (*RepoPolicy, error)
	Invalidate(platform Platform, repoFullName string)
}
