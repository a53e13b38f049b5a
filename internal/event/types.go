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

// Kind identifies one of the supported GitHub event kinds. The values
// match the X-GitHub-Event header names exactly (case-sensitive).
type Kind string

// Supported event kinds.
const (
	KindPush              Kind = "push"
	KindPullRequest       Kind = "pull_request"
	KindPullRequestReview Kind = "pull_request_review"
	KindIssue             Kind = "issues"
	KindIssueComment      Kind = "issue_comment"
	KindRelease           Kind = "release"
	KindCreate            Kind = "create"
	KindDelete            Kind = "delete"
)

// Repository identifies the repository an event originated from.
type Repository struct {
	Name     string
	FullName string
	URL      string
}

// Event is a tagged union over the supported event kinds. Kind selects
// which detail pointer is populated; exactly one is non-nil.
type Event struct {
	Kind  Kind
	Repo  Repository
	Actor string

	Push        *Push
	PullRequest *PullRequest
	Review      *Review
	Issue       *Issue
	Comment     *Comment
	Release     *Release
	Ref         *Ref
}

// Commit is a single commit within a push.
type Commit struct {
	SHA     string
	Message string
	Author  string
	URL     string
}

// Push carries the fields rendered for push events.
type Push struct {
	Branch     string
	Commits    []Commit
	CompareURL string
	Forced     bool
}

// PullRequest carries the fields rendered for pull_request events.
type PullRequest struct {
	Action     string
	Number     int
	Title      string
	Body       string
	BaseBranch string
	HeadBranch string
	Merged     bool
	URL        string
}

// Review carries the fields rendered for pull_request_review events.
type Review struct {
	Action   string
	State    string
	PRNumber int
	PRTitle  string
	Body     string
	URL      string
}

// Issue carries the fields rendered for issues events.
type Issue struct {
	Action string
	Number int
	Title  string
	Body   string
	Labels []string
	URL    string
}

// Comment carries the fields rendered for issue_comment events.
type Comment struct {
	Action      string
	IssueNumber int
	IssueTitle  string
	Body        string
	URL         string
}

// Release carries the fields rendered for release events.
type Release struct {
	Action string
	Tag    string
	Name   string
	Body   string
	URL    string
}

// Ref carries the fields rendered for create and delete events.
type Ref struct {
	Type string
	Name string
}
