// Package core defines the essential interfaces and data structures that form
// the backbone of the application: the normalized event model, the action
// contract, repository policies and the seams to external systems. These
// components are deliberately abstract so that platform-specific code stays at
// the edges.
package core

import (
	"fmt"
	"time"
)

// Platform identifies the hosting platform a webhook delivery originated from.
type Platform string

const (
	PlatformGitHub Platform = "github"
	PlatformGitLab Platform = "gitlab"
)

// EventKind classifies a normalized webhook event.
type EventKind string

const (
	KindPullRequestOpened  EventKind = "pr_opened"
	KindPullRequestUpdated EventKind = "pr_updated"
	KindPullRequestClosed  EventKind = "pr_closed"
	KindPush               EventKind = "push"
	KindComment            EventKind = "comment"
	KindReview             EventKind = "review"
	KindStatus             EventKind = "status"
)

// UnitScoped reports whether events of this kind always concern a single
// pull/merge request and therefore carry a non-zero unit number.
func (k EventKind) UnitScoped() bool {
	switch k {
	case KindPush, KindStatus:
		return false
	default:
		return true
	}
}

// Coalescible reports whether queued events of this kind may be collapsed to
// the most recent one while a unit's pipeline is busy. Only kinds whose
// payload is a snapshot of unit or repository state qualify: the newest event
// subsumes the older ones. Comments and reviews carry per-actor deltas that
// nothing replays later, and opened/closed are one-shot transitions.
func (k EventKind) Coalescible() bool {
	switch k {
	case KindPullRequestUpdated, KindPush, KindStatus:
		return true
	default:
		return false
	}
}

// Repo identifies a repository on a platform.
type Repo struct {
	Owner    string
	Name     string
	FullName string
	CloneURL string
}

// Event is the platform-neutral view of a webhook delivery. It is produced
// once by the normalizer and never mutated afterwards.
type Event struct {
	Platform   Platform
	Kind       EventKind
	Repo       Repo
	Unit       int // PR/MR number; 0 for repository-level events
	Actor      string
	DeliveryID string
	ReceivedAt time.Time // taken from the delivery, not from the wall clock

	// GitHub App installation the delivery belongs to; zero for GitLab.
	InstallationID int64
	// GitLab project ID; zero for GitHub.
	ProjectID int64

	Payload EventPayload
}

// UnitKey returns the serialization key for the event.
func (e *Event) UnitKey() UnitKey {
	return UnitKey{Platform: e.Platform, RepoFullName: e.Repo.FullName, Unit: e.Unit}
}

// HeadSHA returns the commit the event concerns, or "" when the payload
// carries none.
func (e *Event) HeadSHA() string {
	switch p := e.Payload.(type) {
	case PullRequestPayload:
		return p.HeadSHA
	case CommentPayload:
		return p.HeadSHA
	case ReviewPayload:
		return p.HeadSHA
	case StatusPayload:
		return p.SHA
	case PushPayload:
		return p.After
	default:
		return ""
	}
}

// Validate checks the normalizer's output invariants.
func (e *Event) Validate() error {
	if e.Repo.FullName == "" {
		return fmt.Errorf("event %s has no repository", e.DeliveryID)
	}
	if e.Kind.UnitScoped() && e.Unit <= 0 {
		return fmt.Errorf("event %s (%s) has no unit number", e.DeliveryID, e.Kind)
	}
	return nil
}

// EventPayload is the sealed variant carrying kind-specific fields. Only the
// payload types declared here implement it.
type EventPayload interface {
	isPayload()
}

// PullRequestPayload carries the PR/MR-specific fields for opened, updated
// and closed events.
type PullRequestPayload struct {
	Title        string
	Body         string
	Author       string
	HeadSHA      string
	BaseBranch   string
	SourceBranch string
	Additions    int
	Deletions    int
	Merged       bool
}

func (PullRequestPayload) isPayload() {}

// PushPayload carries the fields of a repository-level push.
type PushPayload struct {
	Ref     string
	Before  string
	After   string
	Commits int
}

func (PushPayload) isPayload() {}

// CommentPayload carries a PR/MR comment. Comment events are never coalesced:
// each one may hold a distinct user command.
type CommentPayload struct {
	CommentID int64
	Body      string
	HeadSHA   string
}

func (CommentPayload) isPayload() {}

// ReviewPayload carries a submitted review or approval state change.
type ReviewPayload struct {
	State    string // approved, changes_requested, commented, unapproved
	Reviewer string
	HeadSHA  string
}

func (ReviewPayload) isPayload() {}

// StatusPayload carries an external status/check update on a commit.
type StatusPayload struct {
	Context string
	State   string
	SHA     string
}

func (StatusPayload) isPayload() {}

// UnitKey is the granularity at which processing is serialized: a repository
// plus an optional PR/MR number. Events with the same key are never processed
// concurrently.
type UnitKey struct {
	Platform     Platform
	RepoFullName string
	Unit         int
}

func (k UnitKey) String() string {
	return fmt.Sprintf("%s/%s#%d", k.Platform, k.RepoFullName, k.Unit)
}
