package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earnings-radar/internal/domain/entity"
	"earnings-radar/internal/resilience/retry"
)

var nvda = entity.StoredEvent{
	Symbol: "NVDA",
	Name:   "NVIDIA Corporation",
	Date:   "2025-05-28",
	Time:   "amc",
	Domain: "nvidia.com",
}

func fastRetry(w *webhook) {
	w.retry.InitialDelay = time.Millisecond
	w.retry.MaxDelay = time.Millisecond
}

func TestDiscord_PostsEmbed(t *testing.T) {
	var got discordPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewDiscord(srv.URL, time.Second).NotifyEarnings(context.Background(), nvda, "FMP"))

	want := discordPayload{Embeds: []discordEmbed{{
		Title: "NVIDIA Corporation (NVDA) reports on 2025-05-28 (amc)",
		URL:   "https://nvidia.com",
		Color: discordBlurple,
		Fields: []discordField{
			{Name: "Symbol", Value: "NVDA", Inline: true},
			{Name: "Date", Value: "2025-05-28", Inline: true},
			{Name: "Time", Value: "amc", Inline: true},
		},
		Footer: &discordFooter{Text: "via FMP"},
	}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSlack_PostsBlocks(t *testing.T) {
	var got slackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	ev := nvda
	ev.Name = "NVDA"
	require.NoError(t, NewSlack(srv.URL, time.Second).NotifyEarnings(context.Background(), ev, ""))

	assert.Equal(t, "NVDA reports on 2025-05-28 (amc)", got.Text)
	require.Len(t, got.Blocks, 1)
	assert.Equal(t, "section", got.Blocks[0].Type)
	assert.Contains(t, got.Blocks[0].Text.Text, "<https://nvidia.com|nvidia.com>")
}

func TestWebhook_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, time.Second)
	fastRetry(d.hook)

	require.NoError(t, d.NotifyEarnings(context.Background(), nvda, "FMP"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhook_ClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Unknown Webhook"}`)
	}))
	defer srv.Close()

	s := NewSlack(srv.URL, time.Second)
	fastRetry(s.hook)

	err := s.NotifyEarnings(context.Background(), nvda, "FMP")
	require.Error(t, err)
	var httpErr *retry.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
	assert.NotContains(t, err.Error(), srv.URL)
}

func TestWebhook_ConnectionErrorHidesURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	secretURL := srv.URL + "/api/webhooks/123/secret-token"
	srv.Close()

	d := NewDiscord(secretURL, time.Second)
	fastRetry(d.hook)

	err := d.NotifyEarnings(context.Background(), nvda, "FMP")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}

type recordingNotifier struct {
	name string
	err  error
	got  []entity.StoredEvent
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) NotifyEarnings(_ context.Context, ev entity.StoredEvent, _ string) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordingNotifier{name: "a", err: boom}
	ok := &recordingNotifier{name: "b"}

	err := Multi{failing, ok}.NotifyEarnings(context.Background(), nvda, "FMP")

	assert.ErrorIs(t, err, boom)
	assert.Len(t, failing.got, 1)
	assert.Len(t, ok.got, 1)
	assert.NoError(t, Noop{}.NotifyEarnings(context.Background(), nvda, ""))
}

func TestValidateWebhookURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", "https://discord.com/api/webhooks/1/abc", false},
		{"http", "http://discord.com/api/webhooks/1/abc", true},
		{"other host", "https://evil.example/api/webhooks/1/abc", true},
		{"wrong path", "https://discord.com/channels/1", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWebhookURL(tt.raw, "discord.com", "/api/webhooks/")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWebhookURL)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	t.Run("nothing enabled", func(t *testing.T) {
		t.Setenv("DISCORD_ENABLED", "")
		t.Setenv("SLACK_ENABLED", "")
		assert.IsType(t, Noop{}, LoadFromEnv(logger))
	})

	t.Run("invalid url disables the channel", func(t *testing.T) {
		t.Setenv("DISCORD_ENABLED", "true")
		t.Setenv("DISCORD_WEBHOOK_URL", "https://example.com/hook")
		t.Setenv("SLACK_ENABLED", "true")
		t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/X")

		n := LoadFromEnv(logger)

		multi, ok := n.(Multi)
		require.True(t, ok)
		require.Len(t, multi, 1)
		assert.Equal(t, "slack", multi[0].Name())
		assert.Contains(t, buf.String(), "discord alerts disabled")
	})
}
