package webhook

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sevigo/merge-warden/internal/core"
)

// GitLab delivery headers.
const (
	GitLabEventHeader = "X-Gitlab-Event"
	GitLabUUIDHeader  = "X-Gitlab-Event-Uuid"
)

// GitLab system hook names carried in the event header.
const (
	glPushHook         = "Push Hook"
	glMergeRequestHook = "Merge Request Hook"
	glNoteHook         = "Note Hook"
)

// Minimal views of the GitLab webhook payloads. Only fields the normalizer
// extracts are declared.
type glProject struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
	GitHTTPURL        string `json:"git_http_url"`
}

type glUser struct {
	Username string `json:"username"`
}

type glCommit struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}

type glMergeRequestEvent struct {
	User             glUser    `json:"user"`
	Project          glProject `json:"project"`
	ObjectAttributes struct {
		IID          int      `json:"iid"`
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		Action       string   `json:"action"`
		SourceBranch string   `json:"source_branch"`
		TargetBranch string   `json:"target_branch"`
		AuthorUser   glUser   `json:"author"`
		LastCommit   glCommit `json:"last_commit"`
		UpdatedAt    string   `json:"updated_at"`
	} `json:"object_attributes"`
}

type glNoteEvent struct {
	User             glUser    `json:"user"`
	Project          glProject `json:"project"`
	ObjectAttributes struct {
		ID        int64  `json:"id"`
		Note      string `json:"note"`
		CreatedAt string `json:"created_at"`
	} `json:"object_attributes"`
	MergeRequest *struct {
		IID        int      `json:"iid"`
		LastCommit glCommit `json:"last_commit"`
	} `json:"merge_request"`
}

type glPushEvent struct {
	Ref               string     `json:"ref"`
	Before            string     `json:"before"`
	After             string     `json:"after"`
	UserUsername      string     `json:"user_username"`
	Project           glProject  `json:"project"`
	TotalCommitsCount int        `json:"total_commits_count"`
	Commits           []glCommit `json:"commits"`
}

// normalizeGitLab decodes a GitLab delivery. Payload shapes follow the
// documented webhook formats; decoding is tolerant of extra fields.
func (n *Normalizer) normalizeGitLab(body []byte, header http.Header) (*core.Event, error) {
	hook := header.Get(GitLabEventHeader)
	if hook == "" {
		return nil, fmt.Errorf("%w: no %s header", core.ErrMalformedPayload, GitLabEventHeader)
	}
	deliveryID := header.Get(GitLabUUIDHeader)

	switch hook {
	case glMergeRequestHook:
		return gitlabMergeRequest(body, deliveryID)
	case glNoteHook:
		return gitlabNote(body, deliveryID)
	case glPushHook:
		return gitlabPush(body, deliveryID)
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedEvent, hook)
	}
}

func gitlabRepo(p glProject) core.Repo {
	owner := ""
	if i := strings.LastIndex(p.PathWithNamespace, "/"); i > 0 {
		owner = p.PathWithNamespace[:i]
	}
	return core.Repo{
		Owner:    owner,
		Name:     p.Name,
		FullName: p.PathWithNamespace,
		CloneURL: p.GitHTTPURL,
	}
}

func gitlabMergeRequest(body []byte, deliveryID string) (*core.Event, error) {
	var e glMergeRequestEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedPayload, err)
	}

	attrs := e.ObjectAttributes
	var kind core.EventKind
	var payload core.EventPayload
	switch attrs.Action {
	case "open", "reopen":
		kind = core.KindPullRequestOpened
	case "update":
		kind = core.KindPullRequestUpdated
	case "close", "merge":
		kind = core.KindPullRequestClosed
	case "approved", "unapproved":
		kind = core.KindReview
		payload = core.ReviewPayload{
			State:    attrs.Action,
			Reviewer: e.User.Username,
			HeadSHA:  attrs.LastCommit.ID,
		}
	default:
		return nil, fmt.Errorf("%w: merge_request action %q", core.ErrUnsupportedEvent, attrs.Action)
	}

	if payload == nil {
		payload = core.PullRequestPayload{
			Title:        attrs.Title,
			Body:         attrs.Description,
			Author:       attrs.AuthorUser.Username,
			HeadSHA:      attrs.LastCommit.ID,
			BaseBranch:   attrs.TargetBranch,
			SourceBranch: attrs.SourceBranch,
			Merged:       attrs.Action == "merge",
		}
	}

	return &core.Event{
		Platform:   core.PlatformGitLab,
		Kind:       kind,
		Repo:       gitlabRepo(e.Project),
		Unit:       attrs.IID,
		Actor:      e.User.Username,
		DeliveryID: deliveryID,
		ReceivedAt: parseGitLabTime(attrs.UpdatedAt, attrs.LastCommit.Timestamp),
		ProjectID:  e.Project.ID,
		Payload:    payload,
	}, nil
}

func gitlabNote(body []byte, deliveryID string) (*core.Event, error) {
	var e glNoteEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedPayload, err)
	}
	if e.MergeRequest == nil {
		return nil, fmt.Errorf("%w: note outside a merge request", core.ErrUnsupportedEvent)
	}
	return &core.Event{
		Platform:   core.PlatformGitLab,
		Kind:       core.KindComment,
		Repo:       gitlabRepo(e.Project),
		Unit:       e.MergeRequest.IID,
		Actor:      e.User.Username,
		DeliveryID: deliveryID,
		ReceivedAt: parseGitLabTime(e.ObjectAttributes.CreatedAt),
		ProjectID:  e.Project.ID,
		Payload: core.CommentPayload{
			CommentID: e.ObjectAttributes.ID,
			Body:      e.ObjectAttributes.Note,
			HeadSHA:   e.MergeRequest.LastCommit.ID,
		},
	}, nil
}

func gitlabPush(body []byte, deliveryID string) (*core.Event, error) {
	var e glPushEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedPayload, err)
	}
	var ts string
	if len(e.Commits) > 0 {
		ts = e.Commits[len(e.Commits)-1].Timestamp
	}
	return &core.Event{
		Platform:   core.PlatformGitLab,
		Kind:       core.KindPush,
		Repo:       gitlabRepo(e.Project),
		Actor:      e.UserUsername,
		DeliveryID: deliveryID,
		ReceivedAt: parseGitLabTime(ts),
		ProjectID:  e.Project.ID,
		Payload: core.PushPayload{
			Ref:     e.Ref,
			Before:  e.Before,
			After:   e.After,
			Commits: e.TotalCommitsCount,
		},
	}, nil
}

// parseGitLabTime accepts the two timestamp layouts GitLab mixes in webhook
// payloads and returns the first candidate that parses.
func parseGitLabTime(candidates ...string) time.Time {
	layouts := []string{"2006-01-02 15:04:05 MST", time.RFC3339}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, c); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
