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

package render

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/patchy-bot/patchy/internal/event"
)

func fieldValue(n Notification, name string) string {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func hasField(n Notification, name string) bool {
	for _, f := range n.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

var _ = Describe("Render", func() {
	Context("push events", func() {
		var ev *event.Event

		BeforeEach(func() {
			ev = &event.Event{
				Kind:  event.KindPush,
				Repo:  event.Repository{Name: "widgets", FullName: "acme/widgets", URL: "https://github.com/acme/widgets"},
				Actor: "octocat",
				Push: &event.Push{
					Branch:     "main",
					CompareURL: "https://github.com/acme/widgets/compare/aaa...bbb",
					Commits: []event.Commit{
						{SHA: "aaa1112223334445556667778889990001112223", Message: "fix bug", Author: "octocat"},
					},
				},
			}
		})

		It("renders the repository name in the title", func() {
			n := Render(ev)
			Expect(n.Title).To(Equal("New commit(s) in widgets"))
			Expect(n.Color).To(Equal(ColorGreen))
			Expect(n.Link).To(Equal(ev.Push.CompareURL))
		})

		It("includes branch, actor and commit fields", func() {
			n := Render(ev)
			Expect(fieldValue(n, "Branch")).To(Equal("main"))
			Expect(fieldValue(n, "Pushed by")).To(Equal("octocat"))
			Expect(fieldValue(n, "aaa1112")).To(Equal("fix bug (octocat)"))
		})

		It("keeps only the first line of a commit message", func() {
			ev.Push.Commits[0].Message = "subject line\n\nlong body that should not appear"
			n := Render(ev)
			Expect(fieldValue(n, "aaa1112")).To(Equal("subject line (octocat)"))
		})

		It("truncates long commit messages to the budget", func() {
			ev.Push.Commits[0].Message = strings.Repeat("x", CommitMessageLimit+50)
			n := Render(ev)
			v := fieldValue(n, "aaa1112")
			Expect(v).To(HavePrefix(strings.Repeat("x", CommitMessageLimit) + Ellipsis))
		})

		It("caps commit fields and collapses the remainder", func() {
			ev.Push.Commits = nil
			for i := 0; i < MaxCommitFields+3; i++ {
				ev.Push.Commits = append(ev.Push.Commits, event.Commit{
					SHA:     fmt.Sprintf("%07d0000", i),
					Message: fmt.Sprintf("commit %d", i),
					Author:  "octocat",
				})
			}
			n := Render(ev)
			// 3 header fields + capped commits + the "+N more" field.
			Expect(n.Fields).To(HaveLen(3 + MaxCommitFields + 1))
			Expect(fieldValue(n, "More")).To(Equal("+3 more"))
		})

		It("omits the more field when commits fit the cap", func() {
			n := Render(ev)
			Expect(hasField(n, "More")).To(BeFalse())
		})
	})

	Context("pull request events", func() {
		var ev *event.Event

		BeforeEach(func() {
			ev = &event.Event{
				Kind:  event.KindPullRequest,
				Repo:  event.Repository{Name: "widgets", FullName: "acme/widgets"},
				Actor: "octocat",
				PullRequest: &event.PullRequest{
					Action:     "opened",
					Number:     7,
					Title:      "Add rate limiting",
					Body:       "Implements token bucket.",
					BaseBranch: "main",
					HeadBranch: "feature/rate-limit",
					URL:        "https://github.com/acme/widgets/pull/7",
				},
			}
		})

		It("renders the action and title", func() {
			n := Render(ev)
			Expect(n.Title).To(Equal("PR opened: Add rate limiting"))
			Expect(n.Color).To(Equal(ColorGreen))
			Expect(fieldValue(n, "Branches")).To(Equal("main ← feature/rate-limit"))
			Expect(n.Link).To(Equal(ev.PullRequest.URL))
		})

		It("maps closed-and-merged to the merged action", func() {
			ev.PullRequest.Action = "closed"
			ev.PullRequest.Merged = true
			n := Render(ev)
			Expect(n.Title).To(Equal("PR merged: Add rate limiting"))
			Expect(n.Color).To(Equal(ColorPurple))
		})

		It("keeps closed-without-merge as closed", func() {
			ev.PullRequest.Action = "closed"
			n := Render(ev)
			Expect(n.Title).To(Equal("PR closed: Add rate limiting"))
			Expect(n.Color).To(Equal(ColorRed))
		})

		It("truncates the description to the excerpt budget", func() {
			ev.PullRequest.Body = strings.Repeat("a", ExcerptLimit+1)
			n := Render(ev)
			Expect(fieldValue(n, "Description")).To(Equal(strings.Repeat("a", ExcerptLimit) + Ellipsis))
		})

		It("omits the description field for an empty body", func() {
			ev.PullRequest.Body = ""
			n := Render(ev)
			Expect(hasField(n, "Description")).To(BeFalse())
		})

		It("falls back to gray for unknown actions", func() {
			ev.PullRequest.Action = "synchronize"
			n := Render(ev)
			Expect(n.Color).To(Equal(ColorGray))
		})
	})

	Context("review events", func() {
		It("renders the review state and PR title", func() {
			ev := &event.Event{
				Kind:  event.KindPullRequestReview,
				Repo:  event.Repository{FullName: "acme/widgets"},
				Actor: "hubot",
				Review: &event.Review{
					State:    "approved",
					PRNumber: 7,
					PRTitle:  "Add rate limiting",
					Body:     "LGTM",
					URL:      "https://github.com/acme/widgets/pull/7#pullrequestreview-1",
				},
			}
			n := Render(ev)
			Expect(n.Title).To(Equal("PR review approved: Add rate limiting"))
			Expect(n.Color).To(Equal(ColorGreen))
			Expect(fieldValue(n, "Reviewer")).To(Equal("hubot"))
		})

		It("colors changes_requested red", func() {
			ev := &event.Event{
				Kind:   event.KindPullRequestReview,
				Actor:  "hubot",
				Review: &event.Review{State: "changes_requested", PRNumber: 7, PRTitle: "x"},
			}
			Expect(Render(ev).Color).To(Equal(ColorRed))
		})
	})

	Context("issue events", func() {
		var ev *event.Event

		BeforeEach(func() {
			ev = &event.Event{
				Kind:  event.KindIssue,
				Repo:  event.Repository{FullName: "acme/widgets"},
				Actor: "octocat",
				Issue: &event.Issue{
					Action: "opened",
					Number: 3,
					Title:  "Crash on empty payload",
					Labels: []string{"bug", "priority"},
					URL:    "https://github.com/acme/widgets/issues/3",
				},
			}
		})

		It("renders action, title and labels", func() {
			n := Render(ev)
			Expect(n.Title).To(Equal("Issue opened: Crash on empty payload"))
			Expect(n.Color).To(Equal(ColorRed))
			Expect(fieldValue(n, "Labels")).To(Equal("bug, priority"))
		})

		It("caps the label list", func() {
			ev.Issue.Labels = []string{"a", "b", "c", "d", "e", "f", "g"}
			n := Render(ev)
			Expect(fieldValue(n, "Labels")).To(Equal("a, b, c, d, e"))
		})

		It("omits the labels field when there are none", func() {
			ev.Issue.Labels = nil
			n := Render(ev)
			Expect(hasField(n, "Labels")).To(BeFalse())
		})

		It("colors closed issues green", func() {
			ev.Issue.Action = "closed"
			Expect(Render(ev).Color).To(Equal(ColorGreen))
		})
	})

	Context("comment events", func() {
		It("renders the issue reference and excerpt", func() {
			ev := &event.Event{
				Kind:  event.KindIssueComment,
				Actor: "hubot",
				Comment: &event.Comment{
					Action:      "created",
					IssueNumber: 3,
					IssueTitle:  "Crash on empty payload",
					Body:        "Reproduced on main.",
					URL:         "https://github.com/acme/widgets/issues/3#issuecomment-1",
				},
			}
			n := Render(ev)
			Expect(n.Title).To(Equal("Comment created on #3: Crash on empty payload"))
			Expect(fieldValue(n, "Comment")).To(Equal("Reproduced on main."))
		})
	})

	Context("release events", func() {
		It("renders the tag and notes", func() {
			ev := &event.Event{
				Kind:  event.KindRelease,
				Actor: "octocat",
				Release: &event.Release{
					Tag:  "v1.2.0",
					Name: "Widgets 1.2",
					Body: "Bug fixes.",
					URL:  "https://github.com/acme/widgets/releases/v1.2.0",
				},
			}
			n := Render(ev)
			Expect(n.Title).To(Equal("New release v1.2.0"))
			Expect(n.Color).To(Equal(ColorYellow))
			Expect(fieldValue(n, "Notes")).To(Equal("Bug fixes."))
		})
	})

	Context("ref events", func() {
		It("renders branch creation", func() {
			ev := &event.Event{
				Kind:  event.KindCreate,
				Repo:  event.Repository{FullName: "acme/widgets", URL: "https://github.com/acme/widgets"},
				Actor: "octocat",
				Ref:   &event.Ref{Type: "branch", Name: "feature/retry"},
			}
			n := Render(ev)
			Expect(n.Title).To(Equal("branch created: feature/retry"))
			Expect(n.Color).To(Equal(ColorBlue))
		})

		It("renders tag deletion", func() {
			ev := &event.Event{
				Kind:  event.KindDelete,
				Repo:  event.Repository{FullName: "acme/widgets"},
				Actor: "octocat",
				Ref:   &event.Ref{Type: "tag", Name: "v0.9.0"},
			}
			n := Render(ev)
			Expect(n.Title).To(Equal("tag deleted: v0.9.0"))
			Expect(n.Color).To(Equal(ColorRed))
		})
	})

	Context("determinism", func() {
		It("yields identical output for identical input", func() {
			ev := &event.Event{
				Kind:  event.KindPush,
				Repo:  event.Repository{Name: "widgets", FullName: "acme/widgets"},
				Actor: "octocat",
				Push: &event.Push{
					Branch:  "main",
					Commits: []event.Commit{{SHA: "abc1234def", Message: "x", Author: "octocat"}},
				},
			}
			Expect(Render(ev)).To(Equal(Render(ev)))
		})
	})
})

var _ = Describe("Truncate", func() {
	It("returns short strings unchanged", func() {
		Expect(Truncate("hello", 10)).To(Equal("hello"))
	})

	It("returns strings at exactly the limit unchanged", func() {
		s := strings.Repeat("a", 10)
		Expect(Truncate(s, 10)).To(Equal(s))
	})

	It("appends the ellipsis after exactly the limit in runes", func() {
		s := strings.Repeat("a", 11)
		Expect(Truncate(s, 10)).To(Equal(strings.Repeat("a", 10) + Ellipsis))
	})

	It("counts runes, not bytes", func() {
		s := strings.Repeat("é", 11)
		Expect(Truncate(s, 10)).To(Equal(strings.Repeat("é", 10) + Ellipsis))
	})
})
