package faq

import "context"

// ContentFilter reports the blocked keyword found in an utterance, if any.
type ContentFilter interface {
	Match(utterance string) (keyword string, blocked bool)
}

// Notifier hands a question over to a human operator.
type Notifier interface {
	Notify(ctx context.Context, question, answer string) error
}

// EventPublisher ships turn events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event TurnEvent) error
}
