package faq

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/faq-chatbot/pkg/errors"
	"github.com/yanqian/faq-chatbot/pkg/metrics"
)

// Service exposes the FAQ chatbot to transports.
type Service interface {
	Ask(ctx context.Context, req AskRequest) (AskResponse, bool, error)
	Feedback(ctx context.Context, req FeedbackRequest) error
	Escalate(ctx context.Context, req EscalateRequest) error
	Trending(ctx context.Context) ([]TrendingQuery, error)
	Reload(ctx context.Context) (ReloadResponse, error)
	Stats(ctx context.Context) (Stats, error)
}

type service struct {
	engine   *Engine
	sessions *SessionRegistry
	loader   *Loader
	store    Store
	counter  *metrics.Counter
	logger   *slog.Logger
}

// NewService wires up the FAQ domain.
func NewService(engine *Engine, sessions *SessionRegistry, loader *Loader, store Store, counter *metrics.Counter, logger *slog.Logger) Service {
	return &service{
		engine:   engine,
		sessions: sessions,
		loader:   loader,
		store:    store,
		counter:  counter,
		logger:   logger.With("component", "faq.service"),
	}
}

// Ask resolves one utterance. The bool is false when the question was blank and nothing
// happened.
func (s *service) Ask(ctx context.Context, req AskRequest) (AskResponse, bool, error) {
	if strings.TrimSpace(req.Question) == "" {
		return AskResponse{}, false, nil
	}
	sess, err := s.sessions.Open(req.SessionID)
	if err != nil {
		return AskResponse{}, false, err
	}
	result, ok := sess.HandleUtterance(ctx, req.Question)
	if !ok {
		return AskResponse{}, false, nil
	}
	return AskResponse{SessionID: sess.ID(), Result: result}, true, nil
}

func (s *service) Feedback(ctx context.Context, req FeedbackRequest) error {
	sentiment, ok := ParseSentiment(strings.TrimSpace(req.Sentiment))
	if !ok {
		return apperrors.Wrap(CodeInvalidInput, "sentiment must be positive or negative", nil)
	}
	sess, turnID, err := s.locate(req.SessionID, req.TurnID)
	if err != nil {
		return err
	}
	return sess.RecordFeedback(ctx, turnID, sentiment)
}

func (s *service) Escalate(ctx context.Context, req EscalateRequest) error {
	sess, turnID, err := s.locate(req.SessionID, req.TurnID)
	if err != nil {
		return err
	}
	return sess.Escalate(ctx, turnID)
}

func (s *service) Trending(ctx context.Context) ([]TrendingQuery, error) {
	if s.store == nil {
		return []TrendingQuery{}, nil
	}
	recs, err := s.store.TopQueries(ctx, s.engine.cfg.TopRecommendations)
	if err != nil {
		return nil, apperrors.Wrap("faq_error", "failed to load trending queries", err)
	}
	return recs, nil
}

// Reload refreshes the shared snapshot and hands it to every live session.
func (s *service) Reload(ctx context.Context) (ReloadResponse, error) {
	kb, err := s.loader.Reload(ctx)
	if err != nil {
		return ReloadResponse{Entries: kb.Len()}, err
	}
	s.sessions.ReloadAll(kb)
	s.logger.Info("knowledge base reloaded", "entries", kb.Len())
	return ReloadResponse{Entries: kb.Len()}, nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	kb, err := s.loader.Snapshot(ctx)
	if err != nil {
		s.logger.Warn("stats without knowledge base", "error", err)
	}
	return Stats{
		Entries:   kb.Len(),
		Sessions:  s.sessions.Len(),
		Threshold: s.engine.matcher.Threshold(),
		Counts:    s.counter.Snapshot(),
	}, nil
}

func (s *service) locate(rawSession, rawTurn string) (*Session, uuid.UUID, error) {
	if strings.TrimSpace(rawSession) == "" {
		return nil, uuid.Nil, apperrors.Wrap(CodeInvalidInput, "session id is required", nil)
	}
	sess, err := s.sessions.Get(rawSession)
	if err != nil {
		return nil, uuid.Nil, err
	}
	turnID, err := uuid.Parse(strings.TrimSpace(rawTurn))
	if err != nil {
		return nil, uuid.Nil, apperrors.Wrap(CodeTurnNotFound, "turn not found", err)
	}
	return sess, turnID, nil
}
