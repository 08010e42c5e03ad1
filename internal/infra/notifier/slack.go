package notifier

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"earnings-radar/internal/domain/entity"
)

// Slack posts alerts as Block Kit messages, one per second at most.
type Slack struct {
	hook *webhook
}

// NewSlack returns a Slack notifier for webhookURL.
func NewSlack(webhookURL string, timeout time.Duration) *Slack {
	return &Slack{hook: newWebhook("slack", webhookURL, timeout, rate.Limit(1), 1)}
}

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Name implements Notifier.
func (s *Slack) Name() string { return "slack" }

// NotifyEarnings implements Notifier.
func (s *Slack) NotifyEarnings(ctx context.Context, ev entity.StoredEvent, source string) error {
	return s.hook.post(ctx, buildSlackPayload(ev, source))
}

func buildSlackPayload(ev entity.StoredEvent, source string) slackPayload {
	section := fmt.Sprintf("*%s*\nDate: %s\nTime: %s", headline(ev), ev.Date, ev.Time)
	if ev.Domain != "" {
		section += fmt.Sprintf("\n<https://%s|%s>", ev.Domain, ev.Domain)
	}

	blocks := []slackBlock{{Type: "section", Text: &slackText{Type: "mrkdwn", Text: section}}}
	if source != "" {
		blocks = append(blocks, slackBlock{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: "via " + source}},
		})
	}
	return slackPayload{Text: headline(ev), Blocks: blocks}
}
