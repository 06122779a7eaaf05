package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubMailer struct {
	to, subject, body string
	err               error
}

func (m *stubMailer) Send(_ context.Context, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

func TestEmailNotifierNotify(t *testing.T) {
	mailer := &stubMailer{}
	n := NewEmailNotifier(mailer, " ops@example.com ", "")

	require.NoError(t, n.Notify(context.Background(), "오늘 날씨 어때요", ""))
	require.Equal(t, "ops@example.com", mailer.to)
	require.Equal(t, defaultSubject, mailer.subject)
	require.Contains(t, mailer.body, "질문: 오늘 날씨 어때요")
	require.Contains(t, mailer.body, "(찾지 못함)")

	require.NoError(t, n.Notify(context.Background(), "배송", "2~3일"))
	require.Contains(t, mailer.body, "챗봇 답변: 2~3일")
}

func TestEmailNotifierErrors(t *testing.T) {
	err := NewEmailNotifier(&stubMailer{}, "", "").Notify(context.Background(), "q", "a")
	require.Error(t, err)

	mailer := &stubMailer{err: errors.New("relay denied")}
	err = NewEmailNotifier(mailer, "ops@example.com", "Subject").Notify(context.Background(), "q", "a")
	require.ErrorContains(t, err, "relay denied")
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	mailer := NewLogMailer(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, mailer.Send(context.Background(), "ops@example.com", "subj", "body"))
	require.Contains(t, buf.String(), "escalation email")
	require.Contains(t, buf.String(), "ops@example.com")
}

func TestNewMessage(t *testing.T) {
	msg, err := newMessage("bot@example.com", "ops@example.com", "상담 요청", "line1\nline2")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	require.Contains(t, raw, "bot@example.com")
	require.Contains(t, raw, "ops@example.com")
	require.Contains(t, strings.ToLower(raw), "subject: =?utf-8?")
	require.NotContains(t, raw, "Subject: 상담 요청")
	require.Contains(t, strings.ToLower(raw), "charset=utf-8")
}

func TestNewMessageRejectsBadAddresses(t *testing.T) {
	_, err := newMessage("not an address", "ops@example.com", "s", "b")
	require.ErrorContains(t, err, "from address")

	_, err = newMessage("bot@example.com", "", "s", "b")
	require.ErrorContains(t, err, "recipient address")
}

func TestSMTPMailerSendUnreachable(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{
		Host:    "127.0.0.1",
		Port:    1,
		From:    "bot@example.com",
		Timeout: time.Second,
	})
	err := mailer.Send(context.Background(), "ops@example.com", "s", "b")
	require.ErrorContains(t, err, "smtp send")
}
