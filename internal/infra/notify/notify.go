// Package notify delivers escalation requests to a human operator.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
)

const defaultSubject = "[FAQ 챗봇] 상담원 연결 요청"

// Mailer is the message transport behind the escalation notifier.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EmailNotifier turns an escalated question into an email for the operator inbox.
type EmailNotifier struct {
	mailer    Mailer
	recipient string
	subject   string
}

// NewEmailNotifier constructs the notifier. An empty subject uses the default.
func NewEmailNotifier(mailer Mailer, recipient, subject string) *EmailNotifier {
	if strings.TrimSpace(subject) == "" {
		subject = defaultSubject
	}
	return &EmailNotifier{mailer: mailer, recipient: strings.TrimSpace(recipient), subject: subject}
}

// Notify implements faq.Notifier.
func (n *EmailNotifier) Notify(ctx context.Context, question, answer string) error {
	if n.recipient == "" {
		return errors.New("escalation recipient not configured")
	}
	if err := n.mailer.Send(ctx, n.recipient, n.subject, escalationBody(question, answer)); err != nil {
		return fmt.Errorf("send escalation email: %w", err)
	}
	return nil
}

func escalationBody(question, answer string) string {
	var b strings.Builder
	b.WriteString("사용자가 상담원 연결을 요청했습니다.\n\n")
	b.WriteString("질문: ")
	b.WriteString(question)
	b.WriteString("\n")
	if strings.TrimSpace(answer) == "" {
		b.WriteString("챗봇 답변: (찾지 못함)\n")
	} else {
		b.WriteString("챗봇 답변: ")
		b.WriteString(answer)
		b.WriteString("\n")
	}
	return b.String()
}

// LogMailer writes messages to the log instead of sending them (dev mode).
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs the log-only transport.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("component", "notify.log")}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.InfoContext(ctx, "escalation email", "to", to, "subject", subject, "body", body)
	return nil
}

var (
	_ faq.Notifier = (*EmailNotifier)(nil)
	_ Mailer       = (*LogMailer)(nil)
)
