package faqlog

import (
	"context"
	"time"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
)

// Default worksheet titles.
const (
	DefaultLogWorksheet     = "FAQ_Logs"
	DefaultBlockedWorksheet = "Blocked_Questions"
)

// RowAppender is the part of the sheets client used to append rows.
type RowAppender interface {
	Append(ctx context.Context, sheet string, row []string) error
}

// SheetsInteractionLog appends rows [question, answer, feedback, created_at, turn_id].
type SheetsInteractionLog struct {
	client RowAppender
	sheet  string
}

// NewSheetsInteractionLog constructs the sink.
func NewSheetsInteractionLog(client RowAppender, sheet string) *SheetsInteractionLog {
	if sheet == "" {
		sheet = DefaultLogWorksheet
	}
	return &SheetsInteractionLog{client: client, sheet: sheet}
}

// Append implements faq.InteractionLog.
func (l *SheetsInteractionLog) Append(ctx context.Context, record faq.LogRecord) error {
	return l.client.Append(ctx, l.sheet, []string{
		record.Question,
		record.Answer,
		string(record.Feedback),
		formatTime(record.CreatedAt),
		record.TurnID.String(),
	})
}

// SheetsBlockedLog appends rows [question, tag, created_at, turn_id].
type SheetsBlockedLog struct {
	client RowAppender
	sheet  string
}

// NewSheetsBlockedLog constructs the sink.
func NewSheetsBlockedLog(client RowAppender, sheet string) *SheetsBlockedLog {
	if sheet == "" {
		sheet = DefaultBlockedWorksheet
	}
	return &SheetsBlockedLog{client: client, sheet: sheet}
}

// Append implements faq.BlockedLog.
func (l *SheetsBlockedLog) Append(ctx context.Context, record faq.BlockedRecord) error {
	return l.client.Append(ctx, l.sheet, []string{
		record.Question,
		record.Tag,
		formatTime(record.CreatedAt),
		record.TurnID.String(),
	})
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

var (
	_ faq.InteractionLog = (*SheetsInteractionLog)(nil)
	_ faq.BlockedLog     = (*SheetsBlockedLog)(nil)
)
