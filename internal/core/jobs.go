package core

import (
	"context"
	"errors"
	"time"
)

// JobSpec describes one isolated container job. The spec is opaque to the
// dispatch core; only the runner interprets it.
type JobSpec struct {
	Name    string
	Image   string
	Command []string
	Env     map[string]string
	WorkDir string
	Timeout time.Duration

	// Resource limits, in the runner's native units (podman --cpus / --memory).
	CPULimit    string
	MemoryLimit string
}

// JobOutcome is the result of a finished job.
type JobOutcome struct {
	ExitCode   int
	LogSummary string
}

// Job runner failures.
var (
	// ErrLaunchFailed means the execution environment refused or failed to
	// start the job.
	ErrLaunchFailed = errors.New("job launch failed")
	// ErrJobTimeout means the job exceeded its deadline and was terminated.
	// The runner guarantees the job's resources are reclaimed.
	ErrJobTimeout = errors.New("job timed out")
)

// JobRunner is the sole seam to privileged, isolated execution. The core
// never assumes a specific container technology. Implementations must fully
// reclaim a launched job on both completion and timeout-driven cancellation.
//
//go:generate mockgen -destination=../../mocks/mock_job_runner.go -package=mocks . JobRunner
type JobRunner interface {
	Run(ctx context.Context, spec JobSpec) (JobOutcome, error)
}
