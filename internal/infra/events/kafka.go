// Package events publishes turn events to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
)

// DefaultTopic receives every turn event.
const DefaultTopic = "faq.turns"

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("event publisher closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON encoded turn events keyed by session ID so one session's
// events stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
	mu     sync.Mutex
	closed bool
}

// NewKafkaPublisher builds a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string, writeTimeout time.Duration) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		Compression:            kafka.Snappy,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer), nil
}

func newKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish implements faq.EventPublisher.
func (p *KafkaPublisher) Publish(ctx context.Context, event faq.TurnEvent) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPublisherClosed
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode turn event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.SessionID.String()),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes pending writes and releases the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// Publish implements faq.EventPublisher.
func (NoopPublisher) Publish(context.Context, faq.TurnEvent) error { return nil }

// Close implements io.Closer.
func (NoopPublisher) Close() error { return nil }

var (
	_ faq.EventPublisher = (*KafkaPublisher)(nil)
	_ faq.EventPublisher = NoopPublisher{}
)
