// Package moderation decides whether an utterance is allowed to reach the matcher.
package moderation

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultBlockedKeywords seeds faq.blockedKeywords in the default configuration.
var DefaultBlockedKeywords = []string{"비속어1", "비속어2", "폭력", "혐오", "불법"}

// Filter flags utterances containing any blocked keyword as a case-insensitive substring.
// Matching is deliberately substring based: a keyword hits even inside a longer word.
type Filter struct {
	keywords []string

	// ahocorasick.Matcher keeps per-scan state, so scans are serialized.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

// NewFilter builds a filter over the given keywords. Keywords are lowercased, blank
// entries are dropped and duplicates collapse to their first occurrence.
func NewFilter(keywords []string) *Filter {
	seen := make(map[string]struct{}, len(keywords))
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		lowered := Lower(strings.TrimSpace(kw))
		if lowered == "" {
			continue
		}
		if _, dup := seen[lowered]; dup {
			continue
		}
		seen[lowered] = struct{}{}
		cleaned = append(cleaned, lowered)
	}
	f := &Filter{keywords: cleaned}
	if len(cleaned) > 0 {
		f.matcher = ahocorasick.NewStringMatcher(cleaned)
	}
	return f
}

// IsBlocked reports whether the utterance contains a blocked keyword.
func (f *Filter) IsBlocked(utterance string) bool {
	_, blocked := f.Match(utterance)
	return blocked
}

// Match returns the earliest configured keyword found in the utterance.
func (f *Filter) Match(utterance string) (string, bool) {
	if f == nil || f.matcher == nil || utterance == "" {
		return "", false
	}
	lowered := Lower(utterance)

	f.mu.Lock()
	hits := f.matcher.Match([]byte(lowered))
	f.mu.Unlock()

	if len(hits) == 0 {
		return "", false
	}
	first := hits[0]
	for _, idx := range hits[1:] {
		if idx < first {
			first = idx
		}
	}
	return f.keywords[first], true
}

// Keywords returns a copy of the normalized keyword list.
func (f *Filter) Keywords() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.keywords...)
}

// Lower applies Unicode-aware lowercasing. A fresh Caser is used per call because
// cases.Caser is stateful.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
