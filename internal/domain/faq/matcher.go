package faq

// Matcher picks the stored question closest to an utterance.
type Matcher struct {
	scorer    Scorer
	threshold int
}

// NewMatcher builds a matcher. A nil scorer falls back to WeightedRatio.
func NewMatcher(scorer Scorer, threshold int) *Matcher {
	if scorer == nil {
		scorer = WeightedRatio{}
	}
	return &Matcher{scorer: scorer, threshold: threshold}
}

// FindBestMatch scores every entry and returns the highest scoring question. The earliest
// entry wins ties. ok is false only for an empty knowledge base, which callers are
// expected to rule out first.
func (m *Matcher) FindBestMatch(utterance string, kb *KnowledgeBase) (question string, score int, ok bool) {
	if kb.Len() == 0 {
		return "", 0, false
	}
	score = -1
	for _, entry := range kb.entries {
		s := clampScore(m.scorer.Score(utterance, entry.Question))
		if s > score {
			question, score = entry.Question, s
		}
	}
	return question, score, true
}

// Accepts applies the strict acceptance threshold.
func (m *Matcher) Accepts(score int) bool {
	return score > m.threshold
}

// Threshold returns the configured acceptance threshold.
func (m *Matcher) Threshold() int {
	return m.threshold
}
