package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"jira_notify/internal/model"
)

// Sender delivers one rendered notification.
type Sender interface {
	Send(ctx context.Context, n model.Notification) error
}

// Webhook sends notifications to a Slack incoming webhook URL.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a Webhook sender for url.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts the notification. A non-2xx response or transport failure
// is reported to the caller.
func (w *Webhook) Send(ctx context.Context, n model.Notification) error {
	fields := make([]slack.AttachmentField, 0, len(n.Fields))
	for _, f := range n.Fields {
		fields = append(fields, slack.AttachmentField{
			Title: f.Title,
			Value: f.Value,
			Short: f.Short,
		})
	}

	msg := &slack.WebhookMessage{
		Channel:  n.Channel,
		IconURL:  n.IconURL,
		Username: n.Username,
		Text:     n.Text,
		Attachments: []slack.Attachment{{
			Title:     n.Title,
			TitleLink: n.TitleLink,
			Fields:    fields,
		}},
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, w.url, w.client, msg); err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	return nil
}
