package jira

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type mockTransport struct {
	body       string
	statusCode int
	err        error

	lastReq *http.Request
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func loadFixture(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return string(data)
}

func TestSearchURL(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantJQL string
	}{
		{
			name:    "no filter query",
			query:   "",
			wantJQL: "updated >= -1d ORDER BY updated DESC",
		},
		{
			name:    "filter query is ANDed in front",
			query:   "project = OPS",
			wantJQL: "project = OPS AND updated >= -1d ORDER BY updated DESC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&mockTransport{}, "https://jira.example.com", "", "", tt.query)

			u, err := url.Parse(c.SearchURL())
			if err != nil {
				t.Fatalf("parse url: %v", err)
			}
			if !strings.HasSuffix(u.Path, "/rest/api/2/search") {
				t.Errorf("unexpected path %q", u.Path)
			}

			params := u.Query()
			if diff := cmp.Diff(tt.wantJQL, params.Get("jql")); diff != "" {
				t.Errorf("jql mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff("*navigable,comment,changelog", params.Get("fields")); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff("comment,changelog", params.Get("expand")); diff != "" {
				t.Errorf("expand mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	payload := loadFixture(t, "../../testdata/search.json")

	tests := []struct {
		name       string
		transport  *mockTransport
		wantIssues int
		wantErr    string
	}{
		{
			name:       "successful fetch",
			transport:  &mockTransport{body: payload, statusCode: 200},
			wantIssues: 2,
		},
		{
			name:      "http error status",
			transport: &mockTransport{body: "boom", statusCode: 500},
			wantErr:   "unexpected status 500",
		},
		{
			name:      "network error",
			transport: &mockTransport{err: io.ErrUnexpectedEOF},
			wantErr:   "http get",
		},
		{
			name:      "malformed body",
			transport: &mockTransport{body: "not json", statusCode: 200},
			wantErr:   "parse payload",
		},
		{
			name:      "missing issues list",
			transport: &mockTransport{body: `{"total": 0}`, statusCode: 200},
			wantErr:   "no issues in feed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.transport, "https://jira.example.com", "", "", "")
			result, err := c.Search(context.Background())

			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error %q does not contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.wantIssues, len(result.Issues)); diff != "" {
				t.Errorf("issue count mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearchBasicAuth(t *testing.T) {
	transport := &mockTransport{body: `{"issues": []}`, statusCode: 200}
	c := New(transport, "https://jira.example.com", "bender", "shiny", "")

	if _, err := c.Search(context.Background()); err != nil {
		t.Fatalf("search: %v", err)
	}

	user, pass, ok := transport.lastReq.BasicAuth()
	if !ok {
		t.Fatal("expected basic auth header")
	}
	if user != "bender" || pass != "shiny" {
		t.Errorf("unexpected credentials %q/%q", user, pass)
	}
}

func TestSearchNoAuthWithoutCredentials(t *testing.T) {
	transport := &mockTransport{body: `{"issues": []}`, statusCode: 200}
	c := New(transport, "https://jira.example.com", "", "", "")

	if _, err := c.Search(context.Background()); err != nil {
		t.Fatalf("search: %v", err)
	}
	if _, _, ok := transport.lastReq.BasicAuth(); ok {
		t.Error("unexpected basic auth header")
	}
}

func TestDecodePayload(t *testing.T) {
	payload := loadFixture(t, "../../testdata/search.json")
	result, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	issue := result.Issues[0]
	if diff := cmp.Diff("TEST-1", issue.Key); diff != "" {
		t.Errorf("key mismatch (-want +got):\n%s", diff)
	}
	if issue.Fields.Creator == nil || issue.Fields.Creator.DisplayName != "Alice Archer" {
		t.Errorf("unexpected creator %+v", issue.Fields.Creator)
	}
	if issue.Fields.Comment == nil || len(issue.Fields.Comment.Comments) != 1 {
		t.Fatalf("unexpected comments %+v", issue.Fields.Comment)
	}
	if issue.Changelog == nil || len(issue.Changelog.Histories) != 3 {
		t.Fatalf("unexpected changelog %+v", issue.Changelog)
	}
}
