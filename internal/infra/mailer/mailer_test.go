//go:build unit

package mailer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"school-notifier/internal/domain/notice"
	"school-notifier/internal/pkg/config"
	"school-notifier/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() notice.Message {
	return notice.Message{
		Kind:    notice.KindLowStock,
		Subject: notice.SubjectLowStock,
		To:      []string{"a@school.test", "b@school.test"},
		Body:    "The following items are running low:",
	}
}

func mailConfig(transport string) config.MailConfig {
	return config.MailConfig{
		Transport:            transport,
		FromName:             "School Administration",
		FromAddress:          "noreply@school.test",
		ReplyTo:              "office@school.test",
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SendgridAPIKey:       "sg-key",
	}
}

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name      string
		cfg       config.MailConfig
		wantType  any
		wantError bool
	}{
		{name: "log", cfg: mailConfig(config.MailTransportLog), wantType: &LogSender{}},
		{name: "postmark", cfg: mailConfig(config.MailTransportPostmark), wantType: &PostmarkSender{}},
		{name: "sendgrid", cfg: mailConfig(config.MailTransportSendgrid), wantType: &SendgridSender{}},
		{name: "unknown", cfg: mailConfig("fax"), wantError: true},
		{name: "postmark without token", cfg: config.MailConfig{Transport: config.MailTransportPostmark, FromAddress: "noreply@school.test"}, wantError: true},
		{name: "sendgrid with bad sender", cfg: config.MailConfig{Transport: config.MailTransportSendgrid, SendgridAPIKey: "k", FromAddress: "not-an-email"}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, err := New(tt.cfg, logger)
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, errs.Is(err, ErrInvalidConfig))
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, sender)
		})
	}
}

func TestLogSender(t *testing.T) {
	s := NewLogSender(slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, s.Send(context.Background(), testMessage()))

	empty := testMessage()
	empty.To = nil
	err := s.Send(context.Background(), empty)
	assert.True(t, errs.Is(err, notice.ErrNoRecipients))

	sent := s.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notice.SubjectLowStock, sent[0].Subject)
}

func TestPostmarkSender(t *testing.T) {
	type postmarkRequest struct {
		From     string `json:"From"`
		To       string `json:"To"`
		ReplyTo  string `json:"ReplyTo"`
		Subject  string `json:"Subject"`
		Tag      string `json:"Tag"`
		TextBody string `json:"TextBody"`
	}

	tests := []struct {
		name      string
		response  string
		wantError bool
	}{
		{name: "accepted", response: `{"ErrorCode":0,"Message":"OK","MessageID":"abc"}`},
		{name: "rejected by api", response: `{"ErrorCode":406,"Message":"Inactive recipient"}`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got postmarkRequest
			var token string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				token = r.Header.Get("X-Postmark-Server-Token")
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, tt.response)
			}))
			defer srv.Close()

			s, err := NewPostmarkSender(mailConfig(config.MailTransportPostmark))
			require.NoError(t, err)
			s.client.BaseURL = srv.URL

			err = s.Send(context.Background(), testMessage())

			if tt.wantError {
				require.Error(t, err)
				assert.True(t, errs.Is(err, ErrSendFailed))
				assert.Contains(t, err.Error(), "406")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, "server-token", token)
			assert.Equal(t, "School Administration <noreply@school.test>", got.From)
			assert.Equal(t, "a@school.test,b@school.test", got.To)
			assert.Equal(t, "office@school.test", got.ReplyTo)
			assert.Equal(t, "low-stock", got.Tag)
			assert.Equal(t, notice.SubjectLowStock, got.Subject)
		})
	}

	t.Run("empty recipients never reach the api", func(t *testing.T) {
		s, err := NewPostmarkSender(mailConfig(config.MailTransportPostmark))
		require.NoError(t, err)
		s.client.BaseURL = "http://127.0.0.1:0"

		msg := testMessage()
		msg.To = nil
		err = s.Send(context.Background(), msg)

		assert.True(t, errs.Is(err, notice.ErrNoRecipients))
	})
}

func TestSendgridSender(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantError bool
	}{
		{name: "accepted", status: http.StatusAccepted},
		{name: "unauthorized", status: http.StatusUnauthorized, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			var path, auth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				auth = r.Header.Get("Authorization")
				_ = json.NewDecoder(r.Body).Decode(&body)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			s, err := NewSendgridSender(mailConfig(config.MailTransportSendgrid))
			require.NoError(t, err)
			s.WithHost(srv.URL)

			err = s.Send(context.Background(), testMessage())

			if tt.wantError {
				require.Error(t, err)
				assert.True(t, errs.Is(err, ErrSendFailed))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, "/v3/mail/send", path)
			assert.Equal(t, "Bearer sg-key", auth)

			personalizations, ok := body["personalizations"].([]any)
			require.True(t, ok)
			require.Len(t, personalizations, 1)
			p := personalizations[0].(map[string]any)
			assert.Equal(t, notice.SubjectLowStock, p["subject"])
			assert.Len(t, p["to"], 2)
		})
	}
}
