package actions

import (
	"github.com/sevigo/merge-warden/internal/core"
)

// jobEnv is the contract between the server and the job images: the image
// entrypoint clones REPO_URL, checks out HEAD_SHA and runs its tool.
func jobEnv(ev *core.Event) map[string]string {
	env := map[string]string{
		"REPO_URL":  ev.Repo.CloneURL,
		"REPO_NAME": ev.Repo.FullName,
	}
	if sha := ev.HeadSHA(); sha != "" {
		env["HEAD_SHA"] = sha
	}
	return env
}

// commentRequests reports whether a comment event asks to run the named
// retest target. Non-comment events always qualify.
func commentRequests(ev *core.Event, target string) bool {
	if ev.Kind != core.KindComment {
		return true
	}
	comment, ok := ev.Payload.(core.CommentPayload)
	return ok && HasCommand(comment.Body, "retest", target)
}

// toxJob builds the tox check job from the repository policy.
func toxJob(ev *core.Event, pol *core.RepoPolicy) (core.JobSpec, bool) {
	if !pol.Tox.Enabled || pol.Tox.Image == "" || !commentRequests(ev, "tox") {
		return core.JobSpec{}, false
	}

	command := []string{"tox"}
	if pol.Tox.Targets != "" && pol.Tox.Targets != "all" {
		command = append(command, "-e", pol.Tox.Targets)
	}
	return core.JobSpec{
		Name:        "tox",
		Image:       pol.Tox.Image,
		Command:     command,
		Env:         jobEnv(ev),
		CPULimit:    "2",
		MemoryLimit: "4g",
	}, true
}

// buildContainerJob builds the container-build job from the repository
// policy. The builder image's entrypoint performs the build.
func buildContainerJob(ev *core.Event, pol *core.RepoPolicy) (core.JobSpec, bool) {
	if !pol.BuildContainer.Enabled || pol.BuildContainer.Image == "" || !commentRequests(ev, "build-container") {
		return core.JobSpec{}, false
	}

	env := jobEnv(ev)
	if pol.BuildContainer.Dockerfile != "" {
		env["DOCKERFILE"] = pol.BuildContainer.Dockerfile
	}
	return core.JobSpec{
		Name:        "build-container",
		Image:       pol.BuildContainer.Image,
		Env:         env,
		CPULimit:    "4",
		MemoryLimit: "8g",
	}, true
}
