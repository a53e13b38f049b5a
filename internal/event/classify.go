// Copyright 2025 The Patchy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v66/github"
)

// ErrUnsupportedEvent reports an event that is well-formed but outside the
// supported set: an unknown event type, a ping, a payload whose shape does
// not decode, or a payload missing required fields. The caller acknowledges
// these with a no-op success.
var ErrUnsupportedEvent = errors.New("unsupported event")

// ErrMalformedPayload reports a body that is not structurally valid JSON.
var ErrMalformedPayload = errors.New("malformed payload")

// supported is the closed set of event type names this system renders.
// Matching is case-sensitive; GitHub sends these names in lowercase.
var supported = map[string]Kind{
	"push":                KindPush,
	"pull_request":        KindPullRequest,
	"pull_request_review": KindPullRequestReview,
	"issues":              KindIssue,
	"issue_comment":       KindIssueComment,
	"release":             KindRelease,
	"create":              KindCreate,
	"delete":              KindDelete,
}

// Supported reports whether eventType names a kind this system renders.
func Supported(eventType string) bool {
	_, ok := supported[eventType]
	return ok
}

// Classify decodes a verified payload into a typed Event.
//
// It returns ErrMalformedPayload when the body is not valid JSON, and
// ErrUnsupportedEvent when the event type is outside the supported set or
// the payload lacks the fields required for rendering. Malformed payloads
// from GitHub must never crash the pipeline, so every decode failure on
// valid JSON degrades to ErrUnsupportedEvent.
func Classify(eventType string, payload []byte) (*Event, error) {
	if !json.Valid(payload) {
		return nil, ErrMalformedPayload
	}

	kind, ok := supported[eventType]
	if !ok {
		return nil, fmt.Errorf("event type %q: %w", eventType, ErrUnsupportedEvent)
	}

	raw, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", eventType, ErrUnsupportedEvent)
	}

	var (
		ev       *Event
		buildErr error
	)
	switch e := raw.(type) {
	case *github.PushEvent:
		ev, buildErr = fromPush(e)
	case *github.PullRequestEvent:
		ev, buildErr = fromPullRequest(e)
	case *github.PullRequestReviewEvent:
		ev, buildErr = fromReview(e)
	case *github.IssuesEvent:
		ev, buildErr = fromIssue(e)
	case *github.IssueCommentEvent:
		ev, buildErr = fromComment(e)
	case *github.ReleaseEvent:
		ev, buildErr = fromRelease(e)
	case *github.CreateEvent:
		ev, buildErr = fromCreate(e)
	case *github.DeleteEvent:
		ev, buildErr = fromDelete(e)
	default:
		return nil, fmt.Errorf("event type %q: %w", eventType, ErrUnsupportedEvent)
	}
	if buildErr != nil {
		return nil, fmt.Errorf("%s event: %v: %w", kind, buildErr, ErrUnsupportedEvent)
	}

	ev.Kind = kind
	return ev, nil
}

func fromPush(e *github.PushEvent) (*Event, error) {
	repo := Repository{
		Name:     e.GetRepo().GetName(),
		FullName: e.GetRepo().GetFullName(),
		URL:      e.GetRepo().GetHTMLURL(),
	}
	actor := e.GetPusher().GetName()
	if actor == "" {
		actor = e.GetSender().GetLogin()
	}
	if err := requireFields(repo.FullName, actor, e.GetRef()); err != nil {
		return nil, err
	}

	commits := make([]Commit, 0, len(e.Commits))
	for _, c := range e.Commits {
		commits = append(commits, Commit{
			SHA:     c.GetID(),
			Message: c.GetMessage(),
			Author:  c.GetAuthor().GetName(),
			URL:     c.GetURL(),
		})
	}

	return &Event{
		Repo:  repo,
		Actor: actor,
		Push: &Push{
			Branch:     branchFromRef(e.GetRef()),
			Commits:    commits,
			CompareURL: e.GetCompare(),
			Forced:     e.GetForced(),
		},
	}, nil
}

func fromPullRequest(e *github.PullRequestEvent) (*Event, error) {
	pr := e.GetPullRequest()
	repo := repository(e.GetRepo())
	actor := pr.GetUser().GetLogin()
	if actor == "" {
		actor = e.GetSender().GetLogin()
	}
	if err := requireFields(repo.FullName, actor, e.GetAction()); err != nil {
		return nil, err
	}
	if pr.GetNumber() == 0 {
		return nil, errors.New("missing pull request number")
	}

	return &Event{
		Repo:  repo,
		Actor: actor,
		PullRequest: &PullRequest{
			Action:     e.GetAction(),
			Number:     pr.GetNumber(),
			Title:      pr.GetTitle(),
			Body:       pr.GetBody(),
			BaseBranch: pr.GetBase().GetRef(),
			HeadBranch: pr.GetHead().GetRef(),
			Merged:     pr.GetMerged(),
			URL:        pr.GetHTMLURL(),
		},
	}, nil
}

func fromReview(e *github.PullRequestReviewEvent) (*Event, error) {
	repo := repository(e.GetRepo())
	actor := e.GetReview().GetUser().GetLogin()
	if actor == "" {
		actor = e.GetSender().GetLogin()
	}
	if err := requireFields(repo.FullName, actor, e.GetAction()); err != nil {
		return nil, err
	}
	if e.GetPullRequest().GetNumber() == 0 {
		return nil, errors.New("missing pull request number")
	}

	return &Event{
		Repo:  repo,
		Actor: actor,
		Review: &Review{
			Action:   e.GetAction(),
			State:    e.GetReview().GetState(),
			PRNumber: e.GetPullRequest().GetNumber(),
			PRTitle:  e.GetPullRequest().GetTitle(),
			Body:     e.GetReview().GetBody(),
			URL:      e.GetReview().GetHTMLURL(),
		},
	}, nil
}

func fromIssue(e *github.IssuesEvent) (*Event, error) {
	issue := e.GetIssue()
	repo := repository(e.GetRepo())
	actor := issue.GetUser().GetLogin()
	if actor == "" {
		actor = e.GetSender().GetLogin()
	}
	if err := requireFields(repo.FullName, actor, e.GetAction()); err != nil {
		return nil, err
	}
	if issue.GetNumber() == 0 {
		return nil, errors.New("missing issue number")
	}

	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		if name := l.GetName(); name != "" {
			labels = append(labels, name)
		}
	}

	return &Event{
		Repo:  repo,
		Actor: actor,
		Issue: &Issue{
			Action: e.GetAction(),
			Number: issue.GetNumber(),
			Title:  issue.GetTitle(),
			Body:   issue.GetBody(),
			Labels: labels,
			URL:    issue.GetHTMLURL(),
		},
	}, nil
}

func fromComment(e *github.IssueCommentEvent) (*Event, error) {
	repo := repository(e.GetRepo())
	actor := e.GetComment().GetUser().GetLogin()
	if actor == "" {
		actor = e.GetSender().GetLogin()
	}
	if err := requireFields(repo.FullName, actor, e.GetAction()); err != nil {
		return nil, err
	}
	if e.GetIssue().GetNumber() == 0 {
		return nil, errors.New("missing issue number")
	}

	return &Event{
		Repo:  repo,
		Actor: actor,
		Comment: &Comment{
			Action:      e.GetAction(),
			IssueNumber: e.GetIssue().GetNumber(),
			IssueTitle:  e.GetIssue().GetTitle(),
			Body:        e.GetComment().GetBody(),
			URL:         e.GetComment().GetHTMLURL(),
		},
	}, nil
}

func fromRelease(e *github.ReleaseEvent) (*Event, error) {
	rel := e.GetRelease()
	repo := repository(e.GetRepo())
	actor := rel.GetAuthor().GetLogin()
	if actor == "" {
		actor = e.GetSender().GetLogin()
	}
	if err := requireFields(repo.FullName, actor, rel.GetTagName()); err != nil {
		return nil, err
	}

	return &Event{
		Repo:  repo,
		Actor: actor,
		Release: &Release{
			Action: e.GetAction(),
			Tag:    rel.GetTagName(),
			Name:   rel.GetName(),
			Body:   rel.GetBody(),
			URL:    rel.GetHTMLURL(),
		},
	}, nil
}

func fromCreate(e *github.CreateEvent) (*Event, error) {
	repo := repository(e.GetRepo())
	actor := e.GetSender().GetLogin()
	if err := requireFields(repo.FullName, actor, e.GetRef()); err != nil {
		return nil, err
	}

	return &Event{
		Repo:  repo,
		Actor: actor,
		Ref: &Ref{
			Type: e.GetRefType(),
			Name: e.GetRef(),
		},
	}, nil
}

func fromDelete(e *github.DeleteEvent) (*Event, error) {
	repo := repository(e.GetRepo())
	actor := e.GetSender().GetLogin()
	if err := requireFields(repo.FullName, actor, e.GetRef()); err != nil {
		return nil, err
	}

	return &Event{
		Repo:  repo,
		Actor: actor,
		Ref: &Ref{
			Type: e.GetRefType(),
			Name: e.GetRef(),
		},
	}, nil
}

func repository(r *github.Repository) Repository {
	return Repository{
		Name:     r.GetName(),
		FullName: r.GetFullName(),
		URL:      r.GetHTMLURL(),
	}
}

// requireFields validates the fields every rendered event needs: a
// repository, an actor, and a per-kind identifier.
func requireFields(repoFullName, actor, identifier string) error {
	switch {
	case repoFullName == "":
		return errors.New("missing repository full name")
	case actor == "":
		return errors.New("missing actor login")
	case identifier == "":
		return errors.New("missing event identifier")
	}
	return nil
}

func branchFromRef(ref string) string {
	return strings.TrimPrefix(ref, "refs/heads/")
}
