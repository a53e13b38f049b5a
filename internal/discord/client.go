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

package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/patchy-bot/patchy/internal/dispatch"
	"github.com/patchy-bot/patchy/internal/render"
)

const (
	defaultBaseURL = "https://discord.com/api/v10"
	defaultTimeout = 15 * time.Second
	footerText     = "Patchy"
)

// Client posts notifications to the Discord REST API as channel messages.
// It implements dispatch.Sender and performs no retries of its own.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Discord REST client authenticated with a bot token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// embed mirrors the subset of Discord's embed object this system emits.
type embed struct {
	Title  string       `json:"title,omitempty"`
	URL    string       `json:"url,omitempty"`
	Color  int          `json:"color,omitempty"`
	Fields []embedField `json:"fields,omitempty"`
	Footer *embedFooter `json:"footer,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type messagePayload struct {
	Embeds []embed `json:"embeds"`
}

// rateLimitBody is Discord's 429 response body; retry_after is seconds,
// possibly fractional.
type rateLimitBody struct {
	RetryAfter float64 `json:"retry_after"`
}

// Send posts the notification as a single embed message to the channel.
// Backend rate limits and errors are surfaced in the Result; the caller
// owns retries.
func (c *Client) Send(ctx context.Context, channelID string, n render.Notification) dispatch.Result {
	body, err := json.Marshal(messagePayload{Embeds: []embed{toEmbed(n)}})
	if err != nil {
		return dispatch.Result{Err: fmt.Errorf("encode message: %w", err)}
	}

	url := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return dispatch.Result{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dispatch.Result{Err: fmt.Errorf("send message: %w", err)}
	}
	defer resp.Body.Close()

	result := dispatch.Result{StatusCode: resp.StatusCode}
	if resp.StatusCode == http.StatusTooManyRequests {
		result.RetryAfter = retryAfter(resp)
	}
	return result
}

// retryAfter extracts the advised delay from a 429 response. The JSON
// body's retry_after takes precedence over the Retry-After header.
func retryAfter(resp *http.Response) time.Duration {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var rl rateLimitBody
		if json.Unmarshal(data, &rl) == nil && rl.RetryAfter > 0 {
			return time.Duration(rl.RetryAfter * float64(time.Second))
		}
	}

	if h := resp.Header.Get("Retry-After"); h != "" {
		if secs, err := strconv.ParseFloat(h, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return 0
}

func toEmbed(n render.Notification) embed {
	e := embed{
		Title:  n.Title,
		URL:    n.Link,
		Color:  n.Color,
		Footer: &embedFooter{Text: footerText},
	}
	for _, f := range n.Fields {
		e.Fields = append(e.Fields, embedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return e
}
