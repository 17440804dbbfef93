// Package notify renders notifications and delivers them to a
// Slack-compatible incoming webhook.
package notify

import (
	"jira_notify/internal/model"
)

// Formatter builds notification payloads for one feed destination.
// It holds no mutable state; Build is a pure function of its inputs.
type Formatter struct {
	BaseURL string
	Channel string
	IconURL string
}

// Build renders the notification for author performing action on issue,
// for example "commented on". Missing issue fields fall back to literal
// placeholders instead of failing.
func (f Formatter) Build(issue *model.Issue, author *model.Author, action string) model.Notification {
	href := f.BaseURL + "/browse/" + issue.Key

	var displayName string
	if author != nil {
		if author.DisplayName != "" {
			displayName = author.DisplayName
		} else {
			displayName = author.Name
		}
	}

	username := "JIRA"
	actor := "Someone"
	if displayName != "" {
		username = displayName + " (JIRA)"
		actor = displayName
	}
	if author != nil && author.EmailAddress != "" {
		actor = "<mailto:" + author.EmailAddress + "|" + actor + ">"
	}

	fields := []model.Field{
		{Title: "Type", Value: namedOr(issue.Fields.IssueType, "Unknown"), Short: true},
		{Title: "Status", Value: namedOr(issue.Fields.Status, "Unknown"), Short: true},
		{Title: "Resolution", Value: namedOr(issue.Fields.Resolution, "None"), Short: true},
		{Title: "Assigned To", Value: assigneeLabel(issue.Fields.Assignee), Short: true},
	}

	return model.Notification{
		Channel:   f.Channel,
		IconURL:   f.IconURL,
		Username:  username,
		Text:      actor + " " + action + " <" + href + "|" + issue.Key + ">",
		Title:     issue.Fields.Summary,
		TitleLink: href,
		Fields:    fields,
	}
}

func namedOr(e *model.NamedEntity, fallback string) string {
	if e == nil || e.Name == "" {
		return fallback
	}
	return e.Name
}

func assigneeLabel(a *model.Author) string {
	if a == nil {
		return "Unassigned"
	}
	if a.DisplayName != "" {
		return a.DisplayName
	}
	if a.Name != "" {
		return a.Name
	}
	return "Unknown User"
}
