package faq

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/faq-chatbot/pkg/errors"
)

type turn struct {
	result    Result
	feedback  Sentiment
	escalated bool
}

// Session resolves utterances for one user. Methods are safe for concurrent use.
type Session struct {
	id     uuid.UUID
	engine *Engine

	// lastActive holds unix nanos and is read by the registry without taking mu.
	lastActive atomic.Int64

	mu    sync.Mutex
	kb    *KnowledgeBase
	turns map[uuid.UUID]*turn
	order []uuid.UUID
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// LastActive reports when the session last handled a call.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load()).UTC()
}

func (s *Session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

// Reload swaps the knowledge base snapshot used by subsequent turns.
func (s *Session) Reload(kb *KnowledgeBase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kb = kb
}

// HandleUtterance runs one turn: content filter, then matcher, then logging. It returns
// false without side effects when the utterance is empty or whitespace only. Sink and
// store failures degrade into warnings; the decision itself never changes.
func (s *Session) HandleUtterance(ctx context.Context, text string) (Result, bool) {
	if strings.TrimSpace(text) == "" {
		return Result{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.engine
	now := e.clock()
	s.touch(now)
	result := Result{TurnID: uuid.New(), Query: text}

	if keyword, blocked := s.match(text); blocked {
		result.Outcome = OutcomeBlocked
		e.logger.Info("utterance blocked", "session_id", s.id, "turn_id", result.TurnID, "keyword", keyword)
		if e.blocked != nil {
			record := BlockedRecord{TurnID: result.TurnID, Question: text, Tag: e.cfg.BlockedTag, CreatedAt: now}
			if err := e.blocked.Append(ctx, record); err != nil {
				result.Warnings = append(result.Warnings, s.persistenceWarning("blocked question", err))
			}
		}
		e.counter.Inc(CountBlocked)
		s.finish(ctx, result, now)
		return result, true
	}

	kb, err := s.knowledge(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings, Warning{
			Code:    CodeStoreUnavailable,
			Message: "knowledge base could not be loaded",
		})
	}

	result.Outcome = OutcomeUnanswered
	if kb.Len() > 0 {
		question, score, _ := e.matcher.FindBestMatch(text, kb)
		result.Score = score
		if e.matcher.Accepts(score) {
			answer, _ := kb.AnswerFor(question)
			result.Outcome = OutcomeAnswered
			result.MatchedQuestion = question
			result.Answer = answer
		}
	}

	if e.logs != nil {
		record := LogRecord{TurnID: result.TurnID, Question: text, Answer: result.Answer, CreatedAt: now}
		if err := e.logs.Append(ctx, record); err != nil {
			result.Warnings = append(result.Warnings, s.persistenceWarning("interaction", err))
		}
	}

	if result.Outcome == OutcomeAnswered {
		e.trackTrending(ctx, result.MatchedQuestion)
		e.counter.Inc(CountAnswered)
	} else {
		e.counter.Inc(CountUnanswered)
	}
	s.finish(ctx, result, now)
	return result, true
}

// RecordFeedback stores the user's verdict on an answered turn. Changing the verdict
// appends a revision record; repeating it is a no-op.
func (s *Session) RecordFeedback(ctx context.Context, turnID uuid.UUID, sentiment Sentiment) error {
	if _, ok := ParseSentiment(string(sentiment)); !ok {
		return apperrors.Wrap(CodeInvalidInput, "sentiment must be positive or negative", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.engine
	now := e.clock()
	s.touch(now)

	t, ok := s.turns[turnID]
	if !ok {
		return apperrors.Wrap(CodeTurnNotFound, "turn not found", nil)
	}
	if t.result.Outcome != OutcomeAnswered {
		return apperrors.Wrap(CodeInvalidState, "feedback is only accepted for answered turns", nil)
	}
	if t.feedback == sentiment {
		return nil
	}

	if e.logs != nil {
		record := LogRecord{
			TurnID:    turnID,
			Question:  t.result.Query,
			Answer:    t.result.Answer,
			Feedback:  sentiment,
			CreatedAt: now,
		}
		if err := e.logs.Append(ctx, record); err != nil {
			e.logger.Warn("feedback append failed", "session_id", s.id, "turn_id", turnID, "error", err)
			return apperrors.Wrap(CodePersistenceFailure, "failed to record feedback", err)
		}
	}
	t.feedback = sentiment

	if sentiment == SentimentPositive {
		e.counter.Inc(CountFeedbackPositive)
	} else {
		e.counter.Inc(CountFeedbackNegative)
	}
	e.publish(ctx, s.event(EventTurnFeedback, t, now))
	return nil
}

// Escalate forwards a turn to a human. Blocked turns cannot be escalated; once a
// notification went out, further calls succeed without sending again.
func (s *Session) Escalate(ctx context.Context, turnID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.engine
	now := e.clock()
	s.touch(now)

	t, ok := s.turns[turnID]
	if !ok {
		return apperrors.Wrap(CodeTurnNotFound, "turn not found", nil)
	}
	if t.result.Outcome == OutcomeBlocked {
		return apperrors.Wrap(CodeInvalidState, "blocked turns cannot be escalated", nil)
	}
	if t.escalated {
		return nil
	}
	if e.notifier == nil {
		return apperrors.Wrap(CodeNotifyFailure, "escalation is not configured", nil)
	}
	if err := e.notifier.Notify(ctx, t.result.Query, t.result.Answer); err != nil {
		e.logger.Warn("escalation failed", "session_id", s.id, "turn_id", turnID, "error", err)
		return apperrors.Wrap(CodeNotifyFailure, "failed to notify operator", err)
	}
	t.escalated = true

	e.counter.Inc(CountEscalated)
	e.publish(ctx, s.event(EventTurnEscalated, t, now))
	return nil
}

func (s *Session) match(text string) (string, bool) {
	if s.engine.filter == nil {
		return "", false
	}
	return s.engine.filter.Match(text)
}

// knowledge returns the session snapshot, taking it from the loader on first use.
// Failed loads are not kept so the next turn tries again.
func (s *Session) knowledge(ctx context.Context) (*KnowledgeBase, error) {
	if s.kb != nil {
		return s.kb, nil
	}
	if s.engine.loader == nil {
		return EmptyKnowledgeBase(), nil
	}
	kb, err := s.engine.loader.Snapshot(ctx)
	if err != nil {
		return kb, err
	}
	s.kb = kb
	return kb, nil
}

func (s *Session) persistenceWarning(what string, err error) Warning {
	s.engine.logger.Warn(what+" append failed", "session_id", s.id, "error", err)
	return Warning{Code: CodePersistenceFailure, Message: "failed to record " + what}
}

func (s *Session) finish(ctx context.Context, result Result, now time.Time) {
	t := &turn{result: result}
	s.turns[result.TurnID] = t
	s.order = append(s.order, result.TurnID)
	for len(s.order) > s.engine.cfg.MaxTurns {
		delete(s.turns, s.order[0])
		s.order = s.order[1:]
	}
	s.engine.publish(ctx, s.event(EventTurnResolved, t, now))
}

func (s *Session) event(kind EventType, t *turn, now time.Time) TurnEvent {
	return TurnEvent{
		Type:            kind,
		SessionID:       s.id,
		TurnID:          t.result.TurnID,
		Query:           t.result.Query,
		MatchedQuestion: t.result.MatchedQuestion,
		Answer:          t.result.Answer,
		Score:           t.result.Score,
		Outcome:         t.result.Outcome,
		Feedback:        t.feedback,
		OccurredAt:      now,
	}
}
