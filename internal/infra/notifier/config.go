package notifier

import (
	"log/slog"
	"time"

	pkgconfig "earnings-radar/pkg/config"
)

// LoadFromEnv builds the notifier for the enabled channels:
//
//	DISCORD_ENABLED, DISCORD_WEBHOOK_URL  (https://discord.com/api/webhooks/...)
//	SLACK_ENABLED, SLACK_WEBHOOK_URL      (https://hooks.slack.com/services/...)
//	NOTIFY_TIMEOUT                        (default 10s)
//
// An enabled channel with a bad URL is disabled with a warning rather than
// failing the worker. With no channel left it returns Noop.
func LoadFromEnv(logger *slog.Logger) Notifier {
	timeout := pkgconfig.GetEnvDuration("NOTIFY_TIMEOUT", 10*time.Second)

	var channels Multi
	if pkgconfig.GetEnvBool("DISCORD_ENABLED", false) {
		raw := pkgconfig.GetEnvString("DISCORD_WEBHOOK_URL", "")
		if err := validateWebhookURL(raw, "discord.com", "/api/webhooks/"); err != nil {
			logger.Warn("discord alerts disabled", slog.String("error", err.Error()))
		} else {
			channels = append(channels, NewDiscord(raw, timeout))
		}
	}
	if pkgconfig.GetEnvBool("SLACK_ENABLED", false) {
		raw := pkgconfig.GetEnvString("SLACK_WEBHOOK_URL", "")
		if err := validateWebhookURL(raw, "hooks.slack.com", "/services/"); err != nil {
			logger.Warn("slack alerts disabled", slog.String("error", err.Error()))
		} else {
			channels = append(channels, NewSlack(raw, timeout))
		}
	}

	if len(channels) == 0 {
		logger.Info("earnings alerts disabled")
		return Noop{}
	}
	names := make([]string, 0, len(channels))
	for _, c := range channels {
		names = append(names, c.Name())
	}
	logger.Info("earnings alerts enabled", slog.Any("channels", names))
	return channels
}
