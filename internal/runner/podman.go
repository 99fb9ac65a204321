// Package runner executes delegated jobs in isolated containers. It is the
// only component that launches or terminates privileged work; the dispatch
// core treats job specifications as opaque.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sevigo/merge-warden/internal/core"
)

const logSummaryLimit = 4 * 1024

// PodmanRunner implements core.JobRunner on top of the podman CLI. Containers
// run with --rm so the engine reclaims them on exit; on timeout the process
// is killed and the named container force-removed, so no handle survives
// either path.
type PodmanRunner struct {
	binary string
	logger *slog.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

// NewPodmanRunner creates a runner invoking the given podman binary.
func NewPodmanRunner(binary string, logger *slog.Logger) *PodmanRunner {
	if binary == "" {
		binary = "podman"
	}
	return &PodmanRunner{
		binary: binary,
		logger: logger,
		active: make(map[string]struct{}),
	}
}

// Run launches the job and waits for completion. A context or spec timeout
// terminates the container and returns core.ErrJobTimeout; a failure to
// start returns core.ErrLaunchFailed. Non-zero exit codes are a normal
// outcome, not an error.
func (r *PodmanRunner) Run(ctx context.Context, spec core.JobSpec) (core.JobOutcome, error) {
	if spec.Image == "" {
		return core.JobOutcome{}, fmt.Errorf("%w: job %q has no image", core.ErrLaunchFailed, spec.Name)
	}

	runCtx := ctx
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	name := fmt.Sprintf("mw-%s-%d", spec.Name, time.Now().UnixNano())
	cmd := exec.CommandContext(runCtx, r.binary, r.args(name, spec)...)
	cmd.WaitDelay = 10 * time.Second

	r.track(name)
	defer r.reclaim(name)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	r.logger.Info("launching job", "job", spec.Name, "container", name, "image", spec.Image)

	err := cmd.Run()
	if ctxErr := runCtx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return core.JobOutcome{LogSummary: tail(out.Bytes())}, fmt.Errorf("%w: job %q", core.ErrJobTimeout, spec.Name)
		}
		return core.JobOutcome{LogSummary: tail(out.Bytes())}, fmt.Errorf("job %q canceled: %w", spec.Name, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return core.JobOutcome{
				ExitCode:   exitErr.ExitCode(),
				LogSummary: tail(out.Bytes()),
			}, nil
		}
		return core.JobOutcome{}, fmt.Errorf("%w: %v", core.ErrLaunchFailed, err)
	}

	return core.JobOutcome{ExitCode: 0, LogSummary: tail(out.Bytes())}, nil
}

// args builds the podman command line for a job.
func (r *PodmanRunner) args(name string, spec core.JobSpec) []string {
	args := []string{"run", "--rm", "--name", name}
	if spec.CPULimit != "" {
		args = append(args, "--cpus", spec.CPULimit)
	}
	if spec.MemoryLimit != "" {
		args = append(args, "--memory", spec.MemoryLimit)
	}
	if spec.WorkDir != "" {
		args = append(args, "--workdir", spec.WorkDir)
	}
	// Deterministic env ordering keeps command lines reproducible in logs.
	keys := make([]string, 0, len(spec.Env))
	for k := range spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--env", k+"="+spec.Env[k])
	}
	args = append(args, spec.Image)
	return append(args, spec.Command...)
}

func (r *PodmanRunner) track(name string) {
	r.mu.Lock()
	r.active[name] = struct{}{}
	r.mu.Unlock()
}

// reclaim drops the job handle and force-removes the container in case the
// engine did not (killed before --rm could take effect). Removal errors are
// expected for cleanly finished containers.
func (r *PodmanRunner) reclaim(name string) {
	rmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if out, err := exec.CommandContext(rmCtx, r.binary, "rm", "--force", "--ignore", name).CombinedOutput(); err != nil {
		r.logger.Debug("container removal", "container", name, "output", strings.TrimSpace(string(out)), "error", err)
	}

	r.mu.Lock()
	delete(r.active, name)
	r.mu.Unlock()
}

// ActiveJobs returns the number of jobs with a live handle. It is zero
// whenever no Run call is in flight.
func (r *PodmanRunner) ActiveJobs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// tail returns the last portion of the combined job output for use as a
// check-run summary.
func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) <= logSummaryLimit {
		return s
	}
	return "…" + s[len(s)-logSummaryLimit:]
}
