package notifier

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"earnings-radar/internal/domain/entity"
)

// discordBlurple is the embed accent color (#5865F2).
const discordBlurple = 5793266

// Discord posts alerts as embeds. Discord allows 30 webhook calls per
// minute, so the budget is 0.5 req/s with a burst of 3.
type Discord struct {
	hook *webhook
}

// NewDiscord returns a Discord notifier for webhookURL. The URL is not
// validated here; LoadFromEnv does that for configured channels.
func NewDiscord(webhookURL string, timeout time.Duration) *Discord {
	return &Discord{hook: newWebhook("discord", webhookURL, timeout, rate.Limit(0.5), 3)}
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields"`
	Footer      *discordFooter `json:"footer,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

// Name implements Notifier.
func (d *Discord) Name() string { return "discord" }

// NotifyEarnings implements Notifier.
func (d *Discord) NotifyEarnings(ctx context.Context, ev entity.StoredEvent, source string) error {
	return d.hook.post(ctx, buildDiscordPayload(ev, source))
}

func buildDiscordPayload(ev entity.StoredEvent, source string) discordPayload {
	embed := discordEmbed{
		Title: headline(ev),
		Color: discordBlurple,
		Fields: []discordField{
			{Name: "Symbol", Value: ev.Symbol, Inline: true},
			{Name: "Date", Value: ev.Date, Inline: true},
			{Name: "Time", Value: ev.Time, Inline: true},
		},
	}
	if ev.Domain != "" {
		embed.URL = "https://" + ev.Domain
	}
	if source != "" {
		embed.Footer = &discordFooter{Text: "via " + source}
	}
	return discordPayload{Embeds: []discordEmbed{embed}}
}
