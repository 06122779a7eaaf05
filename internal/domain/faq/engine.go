package faq

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yanqian/faq-chatbot/pkg/metrics"
	"github.com/yanqian/faq-chatbot/pkg/util"
)

// Counter names reported by Stats.
const (
	CountAnswered         = "answered"
	CountUnanswered       = "unanswered"
	CountBlocked          = "blocked"
	CountEscalated        = "escalated"
	CountFeedbackPositive = "feedback_positive"
	CountFeedbackNegative = "feedback_negative"
)

// Engine holds the collaborators shared by every session.
type Engine struct {
	cfg      Config
	filter   ContentFilter
	matcher  *Matcher
	loader   *Loader
	logs     InteractionLog
	blocked  BlockedLog
	notifier Notifier
	store    Store
	events   EventPublisher
	counter  *metrics.Counter
	clock    util.Clock
	logger   *slog.Logger
}

// NewEngine wires the matching and moderation pipeline. Only the loader and logger are
// required; nil sinks are skipped.
func NewEngine(
	cfg Config,
	filter ContentFilter,
	scorer Scorer,
	loader *Loader,
	logs InteractionLog,
	blocked BlockedLog,
	notifier Notifier,
	store Store,
	events EventPublisher,
	counter *metrics.Counter,
	logger *slog.Logger,
) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:      cfg,
		filter:   filter,
		matcher:  NewMatcher(scorer, cfg.Threshold),
		loader:   loader,
		logs:     logs,
		blocked:  blocked,
		notifier: notifier,
		store:    store,
		events:   events,
		counter:  counter,
		clock:    util.NowUTC,
		logger:   logger.With("component", "faq.engine"),
	}
}

// WithClock overrides the time source, mainly for tests.
func (e *Engine) WithClock(clock util.Clock) *Engine {
	e.clock = util.OrNow(clock)
	return e
}

// Config returns the effective configuration after defaults.
func (e *Engine) Config() Config {
	return e.cfg
}

// NewSession starts an isolated conversation.
func (e *Engine) NewSession(id uuid.UUID) *Session {
	sess := &Session{
		id:     id,
		engine: e,
		turns:  make(map[uuid.UUID]*turn),
	}
	sess.touch(e.clock())
	return sess
}

func (e *Engine) publish(ctx context.Context, event TurnEvent) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(ctx, event); err != nil {
		e.logger.Warn("turn event publish failed", "type", event.Type, "turn_id", event.TurnID, "error", err)
	}
}

func (e *Engine) trackTrending(ctx context.Context, question string) {
	if e.store == nil {
		return
	}
	if err := e.store.IncrementQuery(ctx, normalizeQuestion(question), question); err != nil {
		e.logger.Warn("faq trending increment failed", "error", err)
	}
}
