package faq

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	apperrors "github.com/yanqian/faq-chatbot/pkg/errors"
)

// KnowledgeBase is an immutable, ordered snapshot of curated entries.
type KnowledgeBase struct {
	entries []Entry
	answers map[string]string
}

// NewKnowledgeBase copies entries into a snapshot. Entries with a blank question are
// skipped. For duplicate questions the first entry owns the answer.
func NewKnowledgeBase(entries []Entry) *KnowledgeBase {
	kb := &KnowledgeBase{
		entries: make([]Entry, 0, len(entries)),
		answers: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		if strings.TrimSpace(e.Question) == "" {
			continue
		}
		kb.entries = append(kb.entries, e)
		if _, exists := kb.answers[e.Question]; !exists {
			kb.answers[e.Question] = e.Answer
		}
	}
	return kb
}

// EmptyKnowledgeBase returns a snapshot with no entries.
func EmptyKnowledgeBase() *KnowledgeBase {
	return NewKnowledgeBase(nil)
}

// Len returns the number of entries. A nil snapshot is empty.
func (kb *KnowledgeBase) Len() int {
	if kb == nil {
		return 0
	}
	return len(kb.entries)
}

// Entries returns a copy of the entries in source order.
func (kb *KnowledgeBase) Entries() []Entry {
	if kb == nil {
		return nil
	}
	out := make([]Entry, len(kb.entries))
	copy(out, kb.entries)
	return out
}

// AnswerFor looks an answer up by exact question text.
func (kb *KnowledgeBase) AnswerFor(question string) (string, bool) {
	if kb == nil {
		return "", false
	}
	answer, ok := kb.answers[question]
	return answer, ok
}

// Source yields the raw knowledge base table: a header row followed by data rows.
type Source interface {
	Rows(ctx context.Context) ([][]string, error)
}

// Invalidator is implemented by caching sources that can drop their cached copy.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

var (
	questionHeaders = []string{"질문", "question"}
	answerHeaders   = []string{"답변", "answer"}
)

// ParseRows converts a header-plus-rows table into entries. Columns are located by
// header name (질문/답변 or question/answer, case-insensitive) and fall back to the first
// two columns. Rows without a question are dropped; a missing answer cell reads as "".
func ParseRows(rows [][]string) []Entry {
	if len(rows) == 0 {
		return nil
	}
	qCol := headerIndex(rows[0], questionHeaders, 0)
	aCol := headerIndex(rows[0], answerHeaders, 1)

	entries := make([]Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		question := strings.TrimSpace(cell(row, qCol))
		if question == "" {
			continue
		}
		entries = append(entries, Entry{
			Question: question,
			Answer:   strings.TrimSpace(cell(row, aCol)),
		})
	}
	return entries
}

func headerIndex(header []string, names []string, fallback int) int {
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for _, name := range names {
			if strings.EqualFold(h, name) {
				return i
			}
		}
	}
	return fallback
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Loader memoizes the knowledge base snapshot fetched from a Source. A successful load is
// reused until Reload; a failed load is retried on the next call.
type Loader struct {
	source Source
	logger *slog.Logger

	mu      sync.Mutex
	current atomic.Pointer[KnowledgeBase]
}

// NewLoader wires a loader. A nil source serves an empty knowledge base.
func NewLoader(source Source, logger *slog.Logger) *Loader {
	return &Loader{
		source: source,
		logger: logger.With("component", "faq.loader"),
	}
}

// Snapshot returns the memoized knowledge base, loading it on first use. On failure it
// returns an empty snapshot together with a store_unavailable error.
func (l *Loader) Snapshot(ctx context.Context) (*KnowledgeBase, error) {
	if kb := l.current.Load(); kb != nil {
		return kb, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if kb := l.current.Load(); kb != nil {
		return kb, nil
	}
	kb, err := l.fetch(ctx)
	if err != nil {
		return EmptyKnowledgeBase(), err
	}
	l.current.Store(kb)
	return kb, nil
}

// Reload refetches the table, bypassing any cache in front of the source. When the fetch
// fails the previous snapshot stays in place and is returned with the error.
func (l *Loader) Reload(ctx context.Context) (*KnowledgeBase, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if inv, ok := l.source.(Invalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			l.logger.Warn("knowledge base cache invalidation failed", "error", err)
		}
	}
	kb, err := l.fetch(ctx)
	if err != nil {
		prev := l.current.Load()
		if prev == nil {
			prev = EmptyKnowledgeBase()
		}
		return prev, err
	}
	l.current.Store(kb)
	return kb, nil
}

func (l *Loader) fetch(ctx context.Context) (*KnowledgeBase, error) {
	if l.source == nil {
		return EmptyKnowledgeBase(), nil
	}
	rows, err := l.source.Rows(ctx)
	if err != nil {
		l.logger.Warn("knowledge base load failed", "error", err)
		return nil, apperrors.Wrap(CodeStoreUnavailable, "knowledge base unavailable", err)
	}
	kb := NewKnowledgeBase(ParseRows(rows))
	l.logger.Info("knowledge base loaded", "entries", kb.Len())
	return kb, nil
}
