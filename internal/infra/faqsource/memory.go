// Package faqsource provides knowledge base tables from sheets, files, buckets and databases.
package faqsource

import (
	"context"
	"sync"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
)

// MemorySource serves a fixed table, mainly for tests/dev.
type MemorySource struct {
	mu   sync.RWMutex
	rows [][]string
}

// NewMemorySource builds a source from header plus rows.
func NewMemorySource(rows [][]string) *MemorySource {
	return &MemorySource{rows: cloneRows(rows)}
}

// NewMemorySourceFromEntries builds a source from entries under the default header.
func NewMemorySourceFromEntries(entries []faq.Entry) *MemorySource {
	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, []string{"질문", "답변"})
	for _, e := range entries {
		rows = append(rows, []string{e.Question, e.Answer})
	}
	return &MemorySource{rows: rows}
}

// Rows implements faq.Source.
func (s *MemorySource) Rows(_ context.Context) ([][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRows(s.rows), nil
}

// Replace swaps the table served on the next Rows call.
func (s *MemorySource) Replace(rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = cloneRows(rows)
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

var _ faq.Source = (*MemorySource)(nil)
