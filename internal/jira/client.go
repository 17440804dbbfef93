// Package jira handles fetching and decoding the tracker search feed.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"jira_notify/internal/model"
)

const searchPath = "/rest/api/2/search"

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches recently updated issues from one tracker instance.
type Client struct {
	client    HTTPClient
	searchURL string
	username  string
	password  string
	timeout   time.Duration
}

// New creates a Client for the tracker at baseURL. Credentials are
// optional; an empty query selects everything updated in the last day.
func New(client HTTPClient, baseURL, username, password, query string) *Client {
	jql := "updated >= -1d ORDER BY updated DESC"
	if query != "" {
		jql = query + " AND " + jql
	}

	params := url.Values{}
	params.Set("jql", jql)
	params.Set("fields", "*navigable,comment,changelog")
	params.Set("expand", "comment,changelog")

	return &Client{
		client:    client,
		searchURL: baseURL + searchPath + "?" + params.Encode(),
		username:  username,
		password:  password,
		timeout:   30 * time.Second,
	}
}

// SearchURL returns the fully composed search request URL.
func (c *Client) SearchURL() string {
	return c.searchURL
}

// Search fetches one feed payload. Any network failure, non-200 status
// or malformed body is a hard error aborting the caller's pass.
func (c *Client) Search(ctx context.Context) (*model.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 20*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return Decode(body)
}

// Decode parses a raw search payload. A payload without an issues list
// is rejected so the pass aborts instead of silently doing nothing.
func Decode(body []byte) (*model.SearchResult, error) {
	var payload struct {
		Issues *[]model.Issue `json:"issues"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	if payload.Issues == nil {
		return nil, fmt.Errorf("no issues in feed")
	}
	return &model.SearchResult{Issues: *payload.Issues}, nil
}
