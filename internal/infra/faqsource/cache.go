package faqsource

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
)

const defaultCacheTTL = 5 * time.Minute

// CachedSource keeps a copy of another source's table in Valkey so several replicas
// share one fetch. Cache failures fall through to the wrapped source.
type CachedSource struct {
	inner  faq.Source
	client valkey.Client
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSource wraps inner with a read-through cache under prefix.
func NewCachedSource(inner faq.Source, client valkey.Client, prefix string, ttl time.Duration, logger *slog.Logger) *CachedSource {
	if prefix == "" {
		prefix = "faq"
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedSource{
		inner:  inner,
		client: client,
		key:    prefix + ":kb:rows",
		ttl:    ttl,
		logger: logger.With("component", "faqsource.cache"),
	}
}

// Rows implements faq.Source.
func (s *CachedSource) Rows(ctx context.Context) ([][]string, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.key).Build()).ToString()
	switch {
	case err == nil:
		var rows [][]string
		if jsonErr := json.Unmarshal([]byte(payload), &rows); jsonErr == nil {
			return rows, nil
		}
		s.logger.Warn("discarding corrupt knowledge base cache entry", "key", s.key)
	case !valkey.IsValkeyNil(err):
		s.logger.Warn("knowledge base cache read failed", "error", err)
	}

	rows, err := s.inner.Rows(ctx)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(rows); err == nil {
		cmd := s.client.B().Set().Key(s.key).Value(string(encoded)).Ex(s.ttl).Build()
		if err := s.client.Do(ctx, cmd).Error(); err != nil {
			s.logger.Warn("knowledge base cache write failed", "error", err)
		}
	}
	return rows, nil
}

// Invalidate drops the cached table so the next read hits the wrapped source.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.key).Build()).Error()
}

var (
	_ faq.Source      = (*CachedSource)(nil)
	_ faq.Invalidator = (*CachedSource)(nil)
)
