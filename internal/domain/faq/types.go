package faq

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the terminal state of a turn.
type Outcome string

const (
	// OutcomeBlocked means the content filter rejected the utterance.
	OutcomeBlocked Outcome = "blocked"
	// OutcomeAnswered means a stored question matched above the threshold.
	OutcomeAnswered Outcome = "answered"
	// OutcomeUnanswered means nothing matched confidently (or the knowledge base was empty).
	OutcomeUnanswered Outcome = "unanswered"
)

// Sentiment is the user's verdict on an answered turn.
type Sentiment string

const (
	// SentimentNone marks a log record written before any feedback arrived.
	SentimentNone Sentiment = ""
	// SentimentPositive is the "helpful" button.
	SentimentPositive Sentiment = "positive"
	// SentimentNegative is the "not helpful" button.
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment validates user supplied feedback.
func ParseSentiment(raw string) (Sentiment, bool) {
	switch Sentiment(raw) {
	case SentimentPositive, SentimentNegative:
		return Sentiment(raw), true
	default:
		return SentimentNone, false
	}
}

// Entry is one curated question/answer pair.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Warning is a non-fatal problem surfaced alongside a result.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the decision produced for a single utterance.
type Result struct {
	TurnID          uuid.UUID `json:"turnId"`
	Query           string    `json:"query"`
	MatchedQuestion string    `json:"matchedQuestion,omitempty"`
	Answer          string    `json:"answer,omitempty"`
	Score           int       `json:"score"`
	Outcome         Outcome   `json:"outcome"`
	Warnings        []Warning `json:"warnings,omitempty"`
}

// LogRecord is one append-only row of the interaction log.
type LogRecord struct {
	TurnID    uuid.UUID `json:"turnId"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Feedback  Sentiment `json:"feedback"`
	CreatedAt time.Time `json:"createdAt"`
}

// BlockedRecord is one append-only row of the blocked-question log.
type BlockedRecord struct {
	TurnID    uuid.UUID `json:"turnId"`
	Question  string    `json:"question"`
	Tag       string    `json:"tag"`
	CreatedAt time.Time `json:"createdAt"`
}

// TrendingQuery represents a frequently matched question.
type TrendingQuery struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// EventType names what happened on a turn.
type EventType string

const (
	EventTurnResolved  EventType = "turn.resolved"
	EventTurnFeedback  EventType = "turn.feedback"
	EventTurnEscalated EventType = "turn.escalated"
)

// TurnEvent is published for downstream consumers (analytics, operator queues).
type TurnEvent struct {
	Type            EventType `json:"type"`
	SessionID       uuid.UUID `json:"sessionId"`
	TurnID          uuid.UUID `json:"turnId"`
	Query           string    `json:"query"`
	MatchedQuestion string    `json:"matchedQuestion,omitempty"`
	Answer          string    `json:"answer,omitempty"`
	Score           int       `json:"score"`
	Outcome         Outcome   `json:"outcome"`
	Feedback        Sentiment `json:"feedback,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// AskRequest is the transport payload for a new utterance.
type AskRequest struct {
	SessionID string `json:"-"`
	Question  string `json:"question"`
}

// AskResponse wraps the result with the session it was resolved in.
type AskResponse struct {
	SessionID uuid.UUID `json:"sessionId"`
	Result
}

// FeedbackRequest targets a previously answered turn.
type FeedbackRequest struct {
	SessionID string `json:"-"`
	TurnID    string `json:"-"`
	Sentiment string `json:"sentiment"`
}

// EscalateRequest asks for a human follow-up on a turn.
type EscalateRequest struct {
	SessionID string `json:"-"`
	TurnID    string `json:"-"`
}

// ReloadResponse reports the refreshed knowledge base size.
type ReloadResponse struct {
	Entries int `json:"entries"`
}

// Stats summarises process-wide activity.
type Stats struct {
	Entries   int              `json:"entries"`
	Sessions  int              `json:"sessions"`
	Threshold int              `json:"threshold"`
	Counts    map[string]int64 `json:"counts"`
}
