package webhook

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/merge-warden/internal/core"
)

const githubPROpened = `{
	"action": "opened",
	"number": 7,
	"pull_request": {
		"title": "Add retry logic",
		"body": "Retries transient failures.",
		"user": {"login": "dev1"},
		"head": {"ref": "feature/retry", "sha": "abc123"},
		"base": {"ref": "main"},
		"additions": 120,
		"deletions": 8,
		"updated_at": "2024-05-01T10:30:00Z"
	},
	"repository": {
		"name": "widgets",
		"full_name": "acme/widgets",
		"owner": {"login": "acme"},
		"clone_url": "https://github.com/acme/widgets.git"
	},
	"sender": {"login": "dev1"},
	"installation": {"id": 42}
}`

const gitlabMROpened = `{
	"object_kind": "merge_request",
	"user": {"username": "dev2"},
	"project": {
		"id": 314,
		"name": "widgets",
		"path_with_namespace": "acme/widgets",
		"git_http_url": "https://gitlab.example.com/acme/widgets.git"
	},
	"object_attributes": {
		"iid": 9,
		"title": "Fix build",
		"description": "",
		"action": "open",
		"source_branch": "fix/build",
		"target_branch": "main",
		"author": {"username": "dev2"},
		"last_commit": {"id": "def456", "timestamp": "2024-05-01T11:00:00Z"},
		"updated_at": "2024-05-01 11:00:02 UTC"
	}
}`

const gitlabMRNote = `{
	"object_kind": "note",
	"user": {"username": "rev1"},
	"project": {
		"id": 314,
		"name": "widgets",
		"path_with_namespace": "acme/widgets",
		"git_http_url": "https://gitlab.example.com/acme/widgets.git"
	},
	"object_attributes": {
		"id": 5551,
		"note": "/retest tox",
		"created_at": "2024-05-01 11:05:00 UTC"
	},
	"merge_request": {
		"iid": 9,
		"last_commit": {"id": "def456"}
	}
}`

func githubHeader(eventType string) http.Header {
	h := http.Header{}
	h.Set("X-GitHub-Event", eventType)
	h.Set("X-GitHub-Delivery", "delivery-1")
	return h
}

func gitlabHeader(hook string) http.Header {
	h := http.Header{}
	h.Set(GitLabEventHeader, hook)
	h.Set(GitLabUUIDHeader, "uuid-1")
	return h
}

func TestNormalizeGitHubPullRequest(t *testing.T) {
	n := NewNormalizer()

	ev, err := n.Normalize(core.PlatformGitHub, []byte(githubPROpened), githubHeader("pull_request"))
	require.NoError(t, err)

	assert.Equal(t, core.PlatformGitHub, ev.Platform)
	assert.Equal(t, core.KindPullRequestOpened, ev.Kind)
	assert.Equal(t, "acme/widgets", ev.Repo.FullName)
	assert.Equal(t, 7, ev.Unit)
	assert.Equal(t, "dev1", ev.Actor)
	assert.Equal(t, "delivery-1", ev.DeliveryID)
	assert.Equal(t, int64(42), ev.InstallationID)
	assert.False(t, ev.ReceivedAt.IsZero())

	pr, ok := ev.Payload.(core.PullRequestPayload)
	require.True(t, ok)
	assert.Equal(t, "abc123", pr.HeadSHA)
	assert.Equal(t, 120, pr.Additions)
	assert.Equal(t, "main", pr.BaseBranch)
}

func TestNormalizeIsPure(t *testing.T) {
	n := NewNormalizer()

	first, err := n.Normalize(core.PlatformGitHub, []byte(githubPROpened), githubHeader("pull_request"))
	require.NoError(t, err)
	second, err := n.Normalize(core.PlatformGitHub, []byte(githubPROpened), githubHeader("pull_request"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalizeGitHubErrors(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name    string
		body    string
		event   string
		wantErr error
	}{
		{
			name:    "unsupported event type",
			body:    `{}`,
			event:   "watch",
			wantErr: core.ErrUnsupportedEvent,
		},
		{
			name:    "unsupported pull_request action",
			body:    `{"action":"labeled","number":1,"repository":{"full_name":"a/b","name":"b","owner":{"login":"a"}}}`,
			event:   "pull_request",
			wantErr: core.ErrUnsupportedEvent,
		},
		{
			name:    "malformed json",
			body:    `{"action":`,
			event:   "pull_request",
			wantErr: core.ErrMalformedPayload,
		},
		{
			name:    "pull request without repository",
			body:    `{"action":"opened","number":3,"pull_request":{"title":"x"}}`,
			event:   "pull_request",
			wantErr: core.ErrMalformedPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(core.PlatformGitHub, []byte(tt.body), githubHeader(tt.event))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeGitLabMergeRequest(t *testing.T) {
	n := NewNormalizer()

	ev, err := n.Normalize(core.PlatformGitLab, []byte(gitlabMROpened), gitlabHeader(glMergeRequestHook))
	require.NoError(t, err)

	assert.Equal(t, core.PlatformGitLab, ev.Platform)
	assert.Equal(t, core.KindPullRequestOpened, ev.Kind)
	assert.Equal(t, "acme/widgets", ev.Repo.FullName)
	assert.Equal(t, "acme", ev.Repo.Owner)
	assert.Equal(t, 9, ev.Unit)
	assert.Equal(t, int64(314), ev.ProjectID)
	assert.False(t, ev.ReceivedAt.IsZero())

	pr, ok := ev.Payload.(core.PullRequestPayload)
	require.True(t, ok)
	assert.Equal(t, "def456", pr.HeadSHA)
	assert.Equal(t, "main", pr.BaseBranch)
}

func TestNormalizeGitLabNote(t *testing.T) {
	n := NewNormalizer()

	ev, err := n.Normalize(core.PlatformGitLab, []byte(gitlabMRNote), gitlabHeader(glNoteHook))
	require.NoError(t, err)

	assert.Equal(t, core.KindComment, ev.Kind)
	assert.Equal(t, 9, ev.Unit)
	assert.Equal(t, "rev1", ev.Actor)

	c, ok := ev.Payload.(core.CommentPayload)
	require.True(t, ok)
	assert.Equal(t, "/retest tox", c.Body)
	assert.Equal(t, "def456", c.HeadSHA)
}

func TestNormalizeGitLabUnsupportedHook(t *testing.T) {
	n := NewNormalizer()

	_, err := n.Normalize(core.PlatformGitLab, []byte(`{}`), gitlabHeader("Pipeline Hook"))
	assert.ErrorIs(t, err, core.ErrUnsupportedEvent)
}
