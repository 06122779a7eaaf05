package faqlog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
)

// PostgresInteractionLog appends to the faq_logs table.
type PostgresInteractionLog struct {
	pool *pgxpool.Pool
}

// NewPostgresInteractionLog constructs the sink.
func NewPostgresInteractionLog(pool *pgxpool.Pool) *PostgresInteractionLog {
	return &PostgresInteractionLog{pool: pool}
}

// Append implements faq.InteractionLog.
func (l *PostgresInteractionLog) Append(ctx context.Context, record faq.LogRecord) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO faq_logs (turn_id, question, answer, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, record.TurnID, record.Question, record.Answer, string(record.Feedback), record.CreatedAt)
	return err
}

// PostgresBlockedLog appends to the blocked_questions table.
type PostgresBlockedLog struct {
	pool *pgxpool.Pool
}

// NewPostgresBlockedLog constructs the sink.
func NewPostgresBlockedLog(pool *pgxpool.Pool) *PostgresBlockedLog {
	return &PostgresBlockedLog{pool: pool}
}

// Append implements faq.BlockedLog.
func (l *PostgresBlockedLog) Append(ctx context.Context, record faq.BlockedRecord) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO blocked_questions (turn_id, question, tag, created_at)
		VALUES ($1, $2, $3, $4)
	`, record.TurnID, record.Question, record.Tag, record.CreatedAt)
	return err
}

var (
	_ faq.InteractionLog = (*PostgresInteractionLog)(nil)
	_ faq.BlockedLog     = (*PostgresBlockedLog)(nil)
)
