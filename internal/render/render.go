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

	"github.com/patchy-bot/patchy/internal/event"
)

// Display colors, taken from the bot's established palette.
const (
	ColorGreen  = 0x28a745
	ColorRed    = 0xdc3545
	ColorPurple = 0x6f42c1
	ColorBlue   = 0x17a2b8
	ColorYellow = 0xffc107
	ColorGray   = 0x6c757d
)

// Truncation budgets, in runes. Applied per field, never across fields.
const (
	ExcerptLimit       = 500
	CommitMessageLimit = 100
)

// MaxCommitFields caps the per-commit fields rendered for a push; commits
// beyond the cap collapse into a single "+N more" field.
const MaxCommitFields = 5

// maxIssueLabels caps the labels joined into the Labels field.
const maxIssueLabels = 5

// Field is one labelled value within a notification.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Notification is the rendered, backend-agnostic representation of an
// event. Immutable once built.
type Notification struct {
	Title  string
	Color  int
	Fields []Field
	Link   string
}

var prActionColors = map[string]int{
	"opened":   ColorGreen,
	"closed":   ColorRed,
	"merged":   ColorPurple,
	"reopened": ColorBlue,
}

var issueActionColors = map[string]int{
	"opened":   ColorRed,
	"closed":   ColorGreen,
	"reopened": ColorBlue,
}

var reviewStateColors = map[string]int{
	"approved":          ColorGreen,
	"changes_requested": ColorRed,
}

// Render converts a classified event into exactly one Notification.
// It is a pure function: identical input yields identical output.
func Render(ev *event.Event) Notification {
	switch ev.Kind {
	case event.KindPush:
		return renderPush(ev)
	case event.KindPullRequest:
		return renderPullRequest(ev)
	case event.KindPullRequestReview:
		return renderReview(ev)
	case event.KindIssue:
		return renderIssue(ev)
	case event.KindIssueComment:
		return renderComment(ev)
	case event.KindRelease:
		return renderRelease(ev)
	case event.KindCreate:
		return renderRef(ev, "created", ColorBlue)
	case event.KindDelete:
		return renderRef(ev, "deleted", ColorRed)
	default:
		// Unreachable for classified events; render a minimal notification
		// rather than failing the pipeline.
		return Notification{
			Title: fmt.Sprintf("GitHub event in %s", ev.Repo.FullName),
			Color: ColorGray,
			Fields: []Field{
				{Name: "Actor", Value: ev.Actor, Inline: true},
			},
			Link: ev.Repo.URL,
		}
	}
}

func renderPush(ev *event.Event) Notification {
	p := ev.Push
	fields := []Field{
		{Name: "Repository", Value: ev.Repo.FullName, Inline: true},
		{Name: "Branch", Value: p.Branch, Inline: true},
		{Name: "Pushed by", Value: ev.Actor, Inline: true},
	}

	shown := p.Commits
	if len(shown) > MaxCommitFields {
		shown = shown[:MaxCommitFields]
	}
	for _, c := range shown {
		msg := Truncate(firstLine(c.Message), CommitMessageLimit)
		fields = append(fields, Field{
			Name:  shortSHA(c.SHA),
			Value: fmt.Sprintf("%s (%s)", msg, c.Author),
		})
	}
	if extra := len(p.Commits) - MaxCommitFields; extra > 0 {
		fields = append(fields, Field{
			Name:  "More",
			Value: fmt.Sprintf("+%d more", extra),
		})
	}

	return Notification{
		Title:  fmt.Sprintf("New commit(s) in %s", ev.Repo.Name),
		Color:  ColorGreen,
		Fields: fields,
		Link:   p.CompareURL,
	}
}

func renderPullRequest(ev *event.Event) Notification {
	pr := ev.PullRequest
	action := pr.Action
	if action == "closed" && pr.Merged {
		action = "merged"
	}

	fields := []Field{
		{Name: "Author", Value: ev.Actor, Inline: true},
		{Name: "Branches", Value: fmt.Sprintf("%s ← %s", pr.BaseBranch, pr.HeadBranch), Inline: true},
		{Name: "PR", Value: fmt.Sprintf("#%d", pr.Number), Inline: true},
	}
	if pr.Body != "" {
		fields = append(fields, Field{Name: "Description", Value: Truncate(pr.Body, ExcerptLimit)})
	}

	return Notification{
		Title:  fmt.Sprintf("PR %s: %s", action, pr.Title),
		Color:  actionColor(prActionColors, action),
		Fields: fields,
		Link:   pr.URL,
	}
}

func renderReview(ev *event.Event) Notification {
	r := ev.Review
	fields := []Field{
		{Name: "Reviewer", Value: ev.Actor, Inline: true},
		{Name: "PR", Value: fmt.Sprintf("#%d", r.PRNumber), Inline: true},
	}
	if r.Body != "" {
		fields = append(fields, Field{Name: "Review", Value: Truncate(r.Body, ExcerptLimit)})
	}

	return Notification{
		Title:  fmt.Sprintf("PR review %s: %s", r.State, r.PRTitle),
		Color:  actionColor(reviewStateColors, r.State),
		Fields: fields,
		Link:   r.URL,
	}
}

func renderIssue(ev *event.Event) Notification {
	is := ev.Issue
	fields := []Field{
		{Name: "Author", Value: ev.Actor, Inline: true},
		{Name: "Issue", Value: fmt.Sprintf("#%d", is.Number), Inline: true},
	}
	if len(is.Labels) > 0 {
		labels := is.Labels
		if len(labels) > maxIssueLabels {
			labels = labels[:maxIssueLabels]
		}
		fields = append(fields, Field{Name: "Labels", Value: strings.Join(labels, ", ")})
	}

	return Notification{
		Title:  fmt.Sprintf("Issue %s: %s", is.Action, is.Title),
		Color:  actionColor(issueActionColors, is.Action),
		Fields: fields,
		Link:   is.URL,
	}
}

func renderComment(ev *event.Event) Notification {
	c := ev.Comment
	fields := []Field{
		{Name: "Author", Value: ev.Actor, Inline: true},
	}
	if c.Body != "" {
		fields = append(fields, Field{Name: "Comment", Value: Truncate(c.Body, ExcerptLimit)})
	}

	return Notification{
		Title:  fmt.Sprintf("Comment %s on #%d: %s", c.Action, c.IssueNumber, c.IssueTitle),
		Color:  ColorGray,
		Fields: fields,
		Link:   c.URL,
	}
}

func renderRelease(ev *event.Event) Notification {
	rel := ev.Release
	fields := []Field{
		{Name: "Author", Value: ev.Actor, Inline: true},
	}
	if rel.Name != "" {
		fields = append(fields, Field{Name: "Name", Value: rel.Name, Inline: true})
	}
	if rel.Body != "" {
		fields = append(fields, Field{Name: "Notes", Value: Truncate(rel.Body, ExcerptLimit)})
	}

	return Notification{
		Title:  fmt.Sprintf("New release %s", rel.Tag),
		Color:  ColorYellow,
		Fields: fields,
		Link:   rel.URL,
	}
}

func renderRef(ev *event.Event, verb string, color int) Notification {
	return Notification{
		Title: fmt.Sprintf("%s %s: %s", ev.Ref.Type, verb, ev.Ref.Name),
		Color: color,
		Fields: []Field{
			{Name: "Actor", Value: ev.Actor, Inline: true},
			{Name: "Repository", Value: ev.Repo.FullName, Inline: true},
		},
		Link: ev.Repo.URL,
	}
}

func actionColor(colors map[string]int, action string) int {
	if c, ok := colors[action]; ok {
		return c
	}
	return ColorGray
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
