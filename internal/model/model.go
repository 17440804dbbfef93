// Package model defines the domain types used across the application.
package model

import (
	"fmt"
	"time"
)

// jiraTimeLayout is the timestamp format JIRA emits in REST payloads.
const jiraTimeLayout = "2006-01-02T15:04:05.999-0700"

// SearchResult is the payload returned by the tracker search endpoint.
type SearchResult struct {
	Issues []Issue `json:"issues"`
}

// Issue is a single tracker issue with its expanded comments and changelog.
type Issue struct {
	ID        string      `json:"id"`
	Key       string      `json:"key"`
	Fields    IssueFields `json:"fields"`
	Changelog *Changelog  `json:"changelog"`
}

// IssueFields holds the navigable fields requested from the tracker.
type IssueFields struct {
	Created    string       `json:"created"`
	Summary    string       `json:"summary"`
	Creator    *Author      `json:"creator"`
	IssueType  *NamedEntity `json:"issuetype"`
	Status     *NamedEntity `json:"status"`
	Resolution *NamedEntity `json:"resolution"`
	Assignee   *Author      `json:"assignee"`
	Comment    *CommentList `json:"comment"`
}

// NamedEntity is any tracker object referenced only by its display name.
type NamedEntity struct {
	Name string `json:"name"`
}

// CommentList wraps the comment array the way the tracker nests it.
type CommentList struct {
	Comments []Comment `json:"comments"`
}

// Comment is a single issue comment.
type Comment struct {
	ID           string  `json:"id"`
	Created      string  `json:"created"`
	Updated      string  `json:"updated"`
	Author       *Author `json:"author"`
	UpdateAuthor *Author `json:"updateAuthor"`
}

// Changelog wraps an issue's change history.
type Changelog struct {
	Histories []History `json:"histories"`
}

// History is one batch of field changes applied by a single author.
type History struct {
	ID      string  `json:"id"`
	Created string  `json:"created"`
	Author  *Author `json:"author"`
}

// Author identifies the person behind an issue, comment or change.
type Author struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// Identity returns the value used to collapse repeated authors within
// one changelog batch.
func (a *Author) Identity() string {
	if a == nil {
		return ""
	}
	if a.Name != "" {
		return a.Name
	}
	return a.DisplayName
}

// Field is one short attachment field of a notification.
type Field struct {
	Title string
	Value string
	Short bool
}

// Notification is a fully rendered message ready for delivery.
// Constructed per entity, delivered, never persisted.
type Notification struct {
	Channel   string
	IconURL   string
	Username  string
	Text      string
	Title     string
	TitleLink string
	Fields    []Field
}

// ParseTime parses a tracker or marker timestamp. Both the JIRA REST
// format and plain RFC 3339 are accepted.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range []string{jiraTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatTime renders a timestamp the way markers are stored. Full
// precision is kept, so a marker read back compares equal to the
// timestamp it was written with even for sub-second tracker times.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
