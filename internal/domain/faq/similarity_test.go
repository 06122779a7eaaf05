package faq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeightedRatio(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		candidate string
		want      int
	}{
		{name: "identical", query: "abc", candidate: "abc", want: 100},
		{name: "case and punctuation", query: "How do I reset my password?", candidate: "how do i reset my password", want: 100},
		{name: "plain edit distance", query: "kitten", candidate: "sitting", want: 57},
		{name: "korean paraphrase", query: "배송 얼마나 걸려요", candidate: "배송은 얼마나 걸리나요?", want: 75},
		{name: "korean refund", query: "환불 어떻게 해요", candidate: "환불은 어떻게 하나요?", want: 73},
		{name: "short prefix", query: "배송", candidate: "배송은 얼마나 걸리나요?", want: 90},
		{name: "reordered subset", query: "password reset", candidate: "How do I reset my password?", want: 86},
		{name: "unrelated", query: "오늘 날씨 어때요", candidate: "배송은 얼마나 걸리나요?", want: 25},
		{name: "empty query", query: "", candidate: "abc", want: 0},
		{name: "punctuation only", query: "?!", candidate: "abc", want: 0},
	}

	var scorer WeightedRatio
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, scorer.Score(tc.query, tc.candidate))
		})
	}
}

func TestWeightedRatioDeterministic(t *testing.T) {
	var scorer WeightedRatio
	first := scorer.Score("환불 받고 싶어요", "환불은 어떻게 하나요?")
	for i := 0; i < 20; i++ {
		require.Equal(t, first, scorer.Score("환불 받고 싶어요", "환불은 어떻게 하나요?"))
	}
	require.GreaterOrEqual(t, first, 0)
	require.LessOrEqual(t, first, 100)
}

func TestScorerFunc(t *testing.T) {
	scorer := ScorerFunc(func(query, candidate string) int { return len(query) + len(candidate) })
	require.Equal(t, 4, scorer.Score("ab", "cd"))
}
