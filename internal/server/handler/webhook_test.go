package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/webhook"
)

const githubSecret = "hook-secret"

const prOpenedPayload = `{
	"action": "opened",
	"number": 7,
	"pull_request": {
		"number": 7,
		"title": "Add feature",
		"body": "",
		"user": {"login": "octocat"},
		"head": {"sha": "abc123", "ref": "feature"},
		"base": {"ref": "main"},
		"additions": 10,
		"deletions": 2
	},
	"repository": {
		"name": "repo",
		"full_name": "org/repo",
		"owner": {"login": "org"},
		"clone_url": "https://github.com/org/repo.git"
	},
	"installation": {"id": 42},
	"sender": {"login": "octocat"}
}`

type captureAdmitter struct {
	events []*core.Event
}

func (c *captureAdmitter) Admit(ev *core.Event) { c.events = append(c.events, ev) }

func newTestHandler(admitter Admitter) *WebhookHandler {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewWebhookHandler(
		webhook.NewVerifier(githubSecret, "gitlab-token"),
		webhook.NewNormalizer(),
		admitter,
		logger,
	)
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(githubSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func githubRequest(event string, body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", bytes.NewReader(body))
	req.Header.Set("X-GitHub-Event", event)
	req.Header.Set("X-GitHub-Delivery", "delivery-1")
	req.Header.Set("X-Hub-Signature-256", sign(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestWebhookHandler_AcceptsValidDelivery(t *testing.T) {
	admitter := &captureAdmitter{}
	h := newTestHandler(admitter)

	rec := httptest.NewRecorder()
	h.Handle(core.PlatformGitHub)(rec, githubRequest("pull_request", []byte(prOpenedPayload)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, admitter.events, 1)
	ev := admitter.events[0]
	assert.Equal(t, core.KindPullRequestOpened, ev.Kind)
	assert.Equal(t, "org/repo", ev.Repo.FullName)
	assert.Equal(t, 7, ev.Unit)
}

func TestWebhookHandler_RejectsBadSignature(t *testing.T) {
	admitter := &captureAdmitter{}
	h := newTestHandler(admitter)

	req := githubRequest("pull_request", []byte(prOpenedPayload))
	req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(make([]byte, 32)))

	rec := httptest.NewRecorder()
	h.Handle(core.PlatformGitHub)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, admitter.events, "rejected deliveries must never reach the serializer")
}

func TestWebhookHandler_RejectsMissingSignature(t *testing.T) {
	admitter := &captureAdmitter{}
	h := newTestHandler(admitter)

	req := githubRequest("pull_request", []byte(prOpenedPayload))
	req.Header.Del("X-Hub-Signature-256")

	rec := httptest.NewRecorder()
	h.Handle(core.PlatformGitHub)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, admitter.events)
}

func TestWebhookHandler_AcknowledgesUnsupportedEvent(t *testing.T) {
	admitter := &captureAdmitter{}
	h := newTestHandler(admitter)

	body := []byte(`{"zen": "Keep it logically awesome."}`)
	rec := httptest.NewRecorder()
	h.Handle(core.PlatformGitHub)(rec, githubRequest("ping", body))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, admitter.events)
}

func TestWebhookHandler_RejectsMalformedPayload(t *testing.T) {
	admitter := &captureAdmitter{}
	h := newTestHandler(admitter)

	rec := httptest.NewRecorder()
	h.Handle(core.PlatformGitHub)(rec, githubRequest("pull_request", []byte(`{"action": "opened"`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, admitter.events)
}

func TestWebhookHandler_GitLabTokenAuth(t *testing.T) {
	admitter := &captureAdmitter{}
	h := newTestHandler(admitter)

	body := []byte(`{"object_kind": "note"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/gitlab", bytes.NewReader(body))
	req.Header.Set("X-Gitlab-Event", "Note Hook")
	req.Header.Set("X-Gitlab-Token", "wrong-token")

	rec := httptest.NewRecorder()
	h.Handle(core.PlatformGitLab)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, admitter.events)
}
