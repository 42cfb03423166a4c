// Package event turns repository webhook payloads into typed events.
//
// Payloads are decoded and validated once here. Everything downstream works
// with ChangeMerged or ReleasePublished values and never inspects raw JSON.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Kind identifies the type of an event.
type Kind string

const (
	KindChangeMerged     Kind = "change_merged"
	KindReleasePublished Kind = "release_published"
)

// Event is either a ChangeMerged or a ReleasePublished.
type Event interface {
	Kind() Kind
	isEvent()
}

// ChangeMerged is a change request that has been merged into BaseBranch.
type ChangeMerged struct {
	ReferenceID int
	Title       string
	Labels      []string
	BaseBranch  string
	MergeCommit string
}

func (ChangeMerged) Kind() Kind { return KindChangeMerged }
func (ChangeMerged) isEvent()   {}

// ReleasePublished is a published release of VersionTag cut from TargetBranch.
type ReleasePublished struct {
	VersionTag   string
	TargetBranch string
	ReleaseID    int64
}

func (ReleasePublished) Kind() Kind { return KindReleasePublished }
func (ReleasePublished) isEvent()   {}

// ErrIgnored is returned for events and actions that require no processing,
// such as a pull request closed without merging.
var ErrIgnored = errors.New("event ignored")

// InvalidPayloadError is returned when a supported event is missing a field
// or carries a value of the wrong shape.
type InvalidPayloadError struct {
	Event  string
	Field  string
	Reason string
	Err    error
}

func (e *InvalidPayloadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid %s payload", e.Event)
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *InvalidPayloadError) Unwrap() error {
	return e.Err
}

// Parse decodes a GitHub webhook payload for the named event.
// Supported are "pull_request" (and "pull_request_target") with action
// "closed" on a merged pull request, and "release" with action "published".
func Parse(name string, payload []byte) (Event, error) {
	switch name {
	case "pull_request", "pull_request_target":
		return parsePullRequest(name, payload)
	case "release":
		return parseRelease(name, payload)
	default:
		return nil, fmt.Errorf("%w: unsupported event %q", ErrIgnored, name)
	}
}

// FromEnv loads the event described by GITHUB_EVENT_NAME and GITHUB_EVENT_PATH.
func FromEnv() (Event, error) {
	return Load(os.Getenv("GITHUB_EVENT_NAME"), os.Getenv("GITHUB_EVENT_PATH"))
}

// Load reads the payload at path and parses it as the named event.
func Load(name, path string) (Event, error) {
	if name == "" {
		return nil, &InvalidPayloadError{Event: "unknown", Reason: "event name is not set"}
	}
	if path == "" {
		return nil, &InvalidPayloadError{Event: name, Reason: "event payload path is not set"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event payload: %w", err)
	}
	return Parse(name, data)
}

type pullRequestPayload struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest *struct {
		Number         int     `json:"number"`
		Title          string  `json:"title"`
		Merged         bool    `json:"merged"`
		MergeCommitSHA string  `json:"merge_commit_sha"`
		Labels         []Label `json:"labels"`
		Base           struct {
			Ref string `json:"ref"`
		} `json:"base"`
	} `json:"pull_request"`
}

func parsePullRequest(name string, payload []byte) (Event, error) {
	var p pullRequestPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, &InvalidPayloadError{Event: name, Err: err}
	}
	if p.PullRequest == nil {
		return nil, &InvalidPayloadError{Event: name, Field: "pull_request", Reason: "missing"}
	}
	if p.Action != "closed" {
		return nil, fmt.Errorf("%w: pull request action %q", ErrIgnored, p.Action)
	}
	if !p.PullRequest.Merged {
		return nil, fmt.Errorf("%w: pull request closed without merge", ErrIgnored)
	}

	number := p.PullRequest.Number
	if number == 0 {
		number = p.Number
	}
	if number <= 0 {
		return nil, &InvalidPayloadError{Event: name, Field: "pull_request.number", Reason: "must be positive"}
	}

	title := strings.TrimSpace(p.PullRequest.Title)
	if title == "" {
		return nil, &InvalidPayloadError{Event: name, Field: "pull_request.title", Reason: "empty"}
	}

	base := strings.TrimSpace(p.PullRequest.Base.Ref)
	if base == "" {
		return nil, &InvalidPayloadError{Event: name, Field: "pull_request.base.ref", Reason: "empty"}
	}

	return ChangeMerged{
		ReferenceID: number,
		Title:       title,
		Labels:      LabelNames(p.PullRequest.Labels),
		BaseBranch:  base,
		MergeCommit: p.PullRequest.MergeCommitSHA,
	}, nil
}

type releasePayload struct {
	Action  string `json:"action"`
	Release *struct {
		ID              int64  `json:"id"`
		TagName         string `json:"tag_name"`
		TargetCommitish string `json:"target_commitish"`
		Draft           bool   `json:"draft"`
	} `json:"release"`
}

func parseRelease(name string, payload []byte) (Event, error) {
	var p releasePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, &InvalidPayloadError{Event: name, Err: err}
	}
	if p.Release == nil {
		return nil, &InvalidPayloadError{Event: name, Field: "release", Reason: "missing"}
	}
	if p.Action != "published" {
		return nil, fmt.Errorf("%w: release action %q", ErrIgnored, p.Action)
	}
	if p.Release.Draft {
		return nil, fmt.Errorf("%w: draft release", ErrIgnored)
	}

	tag := strings.TrimSpace(p.Release.TagName)
	if tag == "" {
		return nil, &InvalidPayloadError{Event: name, Field: "release.tag_name", Reason: "empty"}
	}

	target := strings.TrimSpace(p.Release.TargetCommitish)
	if target == "" {
		return nil, &InvalidPayloadError{Event: name, Field: "release.target_commitish", Reason: "empty"}
	}

	return ReleasePublished{
		VersionTag:   tag,
		TargetBranch: target,
		ReleaseID:    p.Release.ID,
	}, nil
}
