package faqsource

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
)

// PostgresSource reads the knowledge base from the faq_entries table.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource constructs the table source.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Rows implements faq.Source. Rows come back in curation order.
func (s *PostgresSource) Rows(ctx context.Context) ([][]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT question, answer
		FROM faq_entries
		ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := [][]string{{"question", "answer"}}
	for rows.Next() {
		var question, answer string
		if err := rows.Scan(&question, &answer); err != nil {
			return nil, err
		}
		out = append(out, []string{question, answer})
	}
	return out, rows.Err()
}

var _ faq.Source = (*PostgresSource)(nil)
