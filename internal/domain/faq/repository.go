package faq

import "context"

// InteractionLog is the append-only sink for answered and unanswered turns.
type InteractionLog interface {
	Append(ctx context.Context, record LogRecord) error
}

// BlockedLog is the append-only sink for utterances rejected by the content filter.
type BlockedLog interface {
	Append(ctx context.Context, record BlockedRecord) error
}
