package webhook

import (
	"fmt"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/merge-warden/internal/core"
)

// normalizeGitHub decodes a GitHub delivery using go-github's payload parser
// and converts the typed event into the internal model.
func (n *Normalizer) normalizeGitHub(body []byte, header http.Header) (*core.Event, error) {
	eventType := header.Get(github.EventTypeHeader)
	if eventType == "" {
		return nil, fmt.Errorf("%w: no %s header", core.ErrMalformedPayload, github.EventTypeHeader)
	}

	parsed, err := github.ParseWebHook(eventType, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedPayload, err)
	}

	deliveryID := header.Get(github.DeliveryIDHeader)

	switch e := parsed.(type) {
	case *github.PullRequestEvent:
		return githubPullRequest(e, deliveryID)
	case *github.PushEvent:
		return githubPush(e, deliveryID)
	case *github.IssueCommentEvent:
		return githubIssueComment(e, deliveryID)
	case *github.PullRequestReviewEvent:
		return githubReview(e, deliveryID)
	case *github.StatusEvent:
		return githubStatus(e, deliveryID)
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedEvent, eventType)
	}
}

func githubRepo(r *github.Repository) core.Repo {
	return core.Repo{
		Owner:    r.GetOwner().GetLogin(),
		Name:     r.GetName(),
		FullName: r.GetFullName(),
		CloneURL: r.GetCloneURL(),
	}
}

func githubPullRequest(e *github.PullRequestEvent, deliveryID string) (*core.Event, error) {
	var kind core.EventKind
	switch e.GetAction() {
	case "opened", "reopened":
		kind = core.KindPullRequestOpened
	case "synchronize", "edited", "ready_for_review":
		kind = core.KindPullRequestUpdated
	case "closed":
		kind = core.KindPullRequestClosed
	default:
		return nil, fmt.Errorf("%w: pull_request action %q", core.ErrUnsupportedEvent, e.GetAction())
	}

	pr := e.GetPullRequest()
	return &core.Event{
		Platform:       core.PlatformGitHub,
		Kind:           kind,
		Repo:           githubRepo(e.GetRepo()),
		Unit:           e.GetNumber(),
		Actor:          e.GetSender().GetLogin(),
		DeliveryID:     deliveryID,
		ReceivedAt:     pr.GetUpdatedAt().Time,
		InstallationID: e.GetInstallation().GetID(),
		Payload: core.PullRequestPayload{
			Title:        pr.GetTitle(),
			Body:         pr.GetBody(),
			Author:       pr.GetUser().GetLogin(),
			HeadSHA:      pr.GetHead().GetSHA(),
			BaseBranch:   pr.GetBase().GetRef(),
			SourceBranch: pr.GetHead().GetRef(),
			Additions:    pr.GetAdditions(),
			Deletions:    pr.GetDeletions(),
			Merged:       pr.GetMerged(),
		},
	}, nil
}

func githubPush(e *github.PushEvent, deliveryID string) (*core.Event, error) {
	repo := e.GetRepo()
	return &core.Event{
		Platform:   core.PlatformGitHub,
		Kind:       core.KindPush,
		Repo: core.Repo{
			Owner:    repo.GetOwner().GetLogin(),
			Name:     repo.GetName(),
			FullName: repo.GetFullName(),
			CloneURL: repo.GetCloneURL(),
		},
		Actor:          e.GetSender().GetLogin(),
		DeliveryID:     deliveryID,
		ReceivedAt:     e.GetHeadCommit().GetTimestamp().Time,
		InstallationID: e.GetInstallation().GetID(),
		Payload: core.PushPayload{
			Ref:     e.GetRef(),
			Before:  e.GetBefore(),
			After:   e.GetAfter(),
			Commits: len(e.Commits),
		},
	}, nil
}

func githubIssueComment(e *github.IssueCommentEvent, deliveryID string) (*core.Event, error) {
	if !e.GetIssue().IsPullRequest() {
		return nil, fmt.Errorf("%w: comment on plain issue", core.ErrUnsupportedEvent)
	}
	if e.GetAction() != "created" {
		return nil, fmt.Errorf("%w: issue_comment action %q", core.ErrUnsupportedEvent, e.GetAction())
	}
	return &core.Event{
		Platform:       core.PlatformGitHub,
		Kind:           core.KindComment,
		Repo:           githubRepo(e.GetRepo()),
		Unit:           e.GetIssue().GetNumber(),
		Actor:          e.GetComment().GetUser().GetLogin(),
		DeliveryID:     deliveryID,
		ReceivedAt:     e.GetComment().GetCreatedAt().Time,
		InstallationID: e.GetInstallation().GetID(),
		Payload: core.CommentPayload{
			CommentID: e.GetComment().GetID(),
			Body:      e.GetComment().GetBody(),
		},
	}, nil
}

func githubReview(e *github.PullRequestReviewEvent, deliveryID string) (*core.Event, error) {
	if e.GetAction() != "submitted" && e.GetAction() != "dismissed" {
		return nil, fmt.Errorf("%w: pull_request_review action %q", core.ErrUnsupportedEvent, e.GetAction())
	}
	return &core.Event{
		Platform:       core.PlatformGitHub,
		Kind:           core.KindReview,
		Repo:           githubRepo(e.GetRepo()),
		Unit:           e.GetPullRequest().GetNumber(),
		Actor:          e.GetReview().GetUser().GetLogin(),
		DeliveryID:     deliveryID,
		ReceivedAt:     e.GetReview().GetSubmittedAt().Time,
		InstallationID: e.GetInstallation().GetID(),
		Payload: core.ReviewPayload{
			State:    e.GetReview().GetState(),
			Reviewer: e.GetReview().GetUser().GetLogin(),
			HeadSHA:  e.GetPullRequest().GetHead().GetSHA(),
		},
	}, nil
}

func githubStatus(e *github.StatusEvent, deliveryID string) (*core.Event, error) {
	return &core.Event{
		Platform:       core.PlatformGitHub,
		Kind:           core.KindStatus,
		Repo:           githubRepo(e.GetRepo()),
		Actor:          e.GetSender().GetLogin(),
		DeliveryID:     deliveryID,
		ReceivedAt:     e.GetUpdatedAt().Time,
		InstallationID: e.GetInstallation().GetID(),
		Payload: core.StatusPayload{
			Context: e.GetContext(),
			State:   e.GetState(),
			SHA:     e.GetSHA(),
		},
	}, nil
}
