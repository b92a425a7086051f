package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/CosmoTheDev/slack-digest/internal/config"
	"github.com/slack-go/slack"
)

// SlackChannel posts run events to a Slack incoming webhook URL.
type SlackChannel struct {
	cfg    config.SlackNotifyConfig
	client *http.Client
}

// NewSlack creates a SlackChannel from cfg.
func NewSlack(cfg config.SlackNotifyConfig) *SlackChannel {
	return &SlackChannel{cfg: cfg, client: &http.Client{Timeout: 5 * time.Second}}
}

func (s *SlackChannel) Name() string       { return "slack" }
func (s *SlackChannel) IsConfigured() bool { return s.cfg.WebhookURL != "" }

func (s *SlackChannel) Send(ctx context.Context, evt Event) error {
	msg := &slack.WebhookMessage{
		Text: evt.Title,
		Attachments: []slack.Attachment{{
			Color:  eventColor(evt.Type),
			Title:  evt.Title,
			Text:   evt.Body,
			Footer: "slack-digest",
			Ts:     json.Number(strconv.FormatInt(time.Now().Unix(), 10)),
		}},
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.cfg.WebhookURL, s.client, msg); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}

func eventColor(eventType string) string {
	switch eventType {
	case EventDigestFailed:
		return "#FF0000"
	case EventDigestCompleted:
		return "#22C55E"
	default:
		return "#888888"
	}
}
