// Package faqlog stores interaction and blocked-question records.
package faqlog

import (
	"context"
	"sync"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
)

// MemoryLog is an append-only in-memory sink for tests/dev.
type MemoryLog[T any] struct {
	mu      sync.Mutex
	records []T
}

// NewMemoryInteractionLog returns an in-memory faq.InteractionLog.
func NewMemoryInteractionLog() *MemoryLog[faq.LogRecord] {
	return &MemoryLog[faq.LogRecord]{}
}

// NewMemoryBlockedLog returns an in-memory faq.BlockedLog.
func NewMemoryBlockedLog() *MemoryLog[faq.BlockedRecord] {
	return &MemoryLog[faq.BlockedRecord]{}
}

// Append records one row.
func (l *MemoryLog[T]) Append(_ context.Context, record T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

// List returns a copy of all rows in append order.
func (l *MemoryLog[T]) List(_ context.Context) ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.records))
	copy(out, l.records)
	return out, nil
}

var (
	_ faq.InteractionLog = (*MemoryLog[faq.LogRecord])(nil)
	_ faq.BlockedLog     = (*MemoryLog[faq.BlockedRecord])(nil)
)
