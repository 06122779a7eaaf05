package faq

import "time"

// DefaultAcceptanceThreshold is the score a match must strictly exceed to be answered.
const DefaultAcceptanceThreshold = 60

// DefaultBlockedTag labels rows in the blocked-question log.
const DefaultBlockedTag = "차단된 질문"

const (
	defaultMaxTurns           = 50
	defaultSessionIdleTTL     = 30 * time.Minute
	defaultTopRecommendations = 10
)

// Config holds runtime knobs for the FAQ engine.
type Config struct {
	Threshold          int
	BlockedTag         string
	MaxTurns           int
	SessionIdleTTL     time.Duration
	TopRecommendations int
}

func (c Config) withDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = DefaultAcceptanceThreshold
	}
	if c.BlockedTag == "" {
		c.BlockedTag = DefaultBlockedTag
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = defaultMaxTurns
	}
	if c.SessionIdleTTL <= 0 {
		c.SessionIdleTTL = defaultSessionIdleTTL
	}
	if c.TopRecommendations <= 0 {
		c.TopRecommendations = defaultTopRecommendations
	}
	return c
}
