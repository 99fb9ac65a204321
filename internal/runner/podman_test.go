package runner

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/merge-warden/internal/core"
)

// fakeEngine writes a shell script standing in for the container engine. The
// script handles the trailing "rm" reclamation call and runs the given body
// for "run".
func fakeEngine(t *testing.T, runBody string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell fake not available")
	}

	script := "#!/bin/sh\ncase \"$1\" in\n  rm) exit 0 ;;\nesac\n" + runBody + "\n"
	path := filepath.Join(t.TempDir(), "podman")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPodmanRunner_Success(t *testing.T) {
	r := NewPodmanRunner(fakeEngine(t, `echo "tox passed"`), testLogger())

	outcome, err := r.Run(context.Background(), core.JobSpec{
		Name:    "tox",
		Image:   "quay.io/warden/tox:latest",
		Command: []string{"tox", "-e", "py311"},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Contains(t, outcome.LogSummary, "tox passed")
	assert.Equal(t, 0, r.ActiveJobs())
}

func TestPodmanRunner_NonZeroExitIsNotAnError(t *testing.T) {
	r := NewPodmanRunner(fakeEngine(t, "echo \"lint failed\"\nexit 3"), testLogger())

	outcome, err := r.Run(context.Background(), core.JobSpec{
		Name:  "tox",
		Image: "quay.io/warden/tox:latest",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, outcome.ExitCode)
	assert.Contains(t, outcome.LogSummary, "lint failed")
}

func TestPodmanRunner_Timeout(t *testing.T) {
	r := NewPodmanRunner(fakeEngine(t, "sleep 10"), testLogger())

	_, err := r.Run(context.Background(), core.JobSpec{
		Name:    "build-container",
		Image:   "quay.io/warden/builder:latest",
		Timeout: 100 * time.Millisecond,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrJobTimeout)
	assert.Equal(t, 0, r.ActiveJobs(), "timed out job must not leak a handle")
}

func TestPodmanRunner_LaunchFailure(t *testing.T) {
	r := NewPodmanRunner(filepath.Join(t.TempDir(), "missing-engine"), testLogger())

	_, err := r.Run(context.Background(), core.JobSpec{Name: "tox", Image: "img"})

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrLaunchFailed)
	assert.Equal(t, 0, r.ActiveJobs())
}

func TestPodmanRunner_MissingImage(t *testing.T) {
	r := NewPodmanRunner("podman", testLogger())

	_, err := r.Run(context.Background(), core.JobSpec{Name: "tox"})

	assert.ErrorIs(t, err, core.ErrLaunchFailed)
}

func TestPodmanRunner_ArgsOrder(t *testing.T) {
	r := NewPodmanRunner("podman", testLogger())

	args := r.args("mw-tox-1", core.JobSpec{
		Name:        "tox",
		Image:       "quay.io/warden/tox:latest",
		Command:     []string{"tox", "-e", "lint"},
		WorkDir:     "/src",
		CPULimit:    "2",
		MemoryLimit: "2g",
		Env:         map[string]string{"B": "2", "A": "1"},
	})

	assert.Equal(t, []string{
		"run", "--rm", "--name", "mw-tox-1",
		"--cpus", "2",
		"--memory", "2g",
		"--workdir", "/src",
		"--env", "A=1",
		"--env", "B=2",
		"quay.io/warden/tox:latest",
		"tox", "-e", "lint",
	}, args)
}

func TestPodmanRunner_ContextCancellation(t *testing.T) {
	r := NewPodmanRunner(fakeEngine(t, "sleep 10"), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.Run(ctx, core.JobSpec{Name: "tox", Image: "img"})
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		// Cancellation is not a deadline: the job did not time out.
		assert.False(t, errors.Is(err, core.ErrJobTimeout))
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not return after cancellation")
	}
	assert.Equal(t, 0, r.ActiveJobs())
}
