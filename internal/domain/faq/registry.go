package faq

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/faq-chatbot/pkg/errors"
)

// SessionRegistry tracks live sessions by ID and evicts idle ones.
type SessionRegistry struct {
	engine *Engine
	ttl    time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewSessionRegistry builds an empty registry using the engine's idle TTL.
func NewSessionRegistry(engine *Engine) *SessionRegistry {
	return &SessionRegistry{
		engine:   engine,
		ttl:      engine.cfg.SessionIdleTTL,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Open returns the live session for rawID, or starts a new one when rawID is empty,
// unknown or expired. A malformed ID is rejected.
func (r *SessionRegistry) Open(rawID string) (*Session, error) {
	var (
		id    uuid.UUID
		hasID bool
	)
	if trimmed := strings.TrimSpace(rawID); trimmed != "" {
		parsed, err := uuid.Parse(trimmed)
		if err != nil {
			return nil, apperrors.Wrap(CodeInvalidInput, "session id must be a uuid", err)
		}
		id, hasID = parsed, true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()

	if hasID {
		if sess, ok := r.sessions[id]; ok {
			return sess, nil
		}
	}
	sess := r.engine.NewSession(uuid.New())
	r.sessions[sess.ID()] = sess
	return sess, nil
}

// Get returns an existing live session.
func (r *SessionRegistry) Get(rawID string) (*Session, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, apperrors.Wrap(CodeSessionNotFound, "session not found", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.Wrap(CodeSessionNotFound, "session not found", nil)
	}
	return sess, nil
}

// Len counts live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	return len(r.sessions)
}

// ReloadAll pushes a fresh knowledge base snapshot into every live session.
func (r *SessionRegistry) ReloadAll(kb *KnowledgeBase) {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.Reload(kb)
	}
}

func (r *SessionRegistry) sweepLocked() {
	cutoff := r.engine.clock().Add(-r.ttl)
	for id, sess := range r.sessions {
		if sess.LastActive().Before(cutoff) {
			delete(r.sessions, id)
		}
	}
}
