package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterIsBlocked(t *testing.T) {
	filter := NewFilter([]string{"폭력", "Spam", "übel", "  ", "불법"})

	cases := []struct {
		name    string
		in      string
		blocked bool
	}{
		{name: "korean keyword", in: "폭력적인 콘텐츠 신고", blocked: true},
		{name: "keyword inside longer word", in: "불법적인 거래", blocked: true},
		{name: "ascii case folding", in: "this is SPAM!", blocked: true},
		{name: "non ascii case folding", in: "ÜBEL gelaunt", blocked: true},
		{name: "clean utterance", in: "배송은 얼마나 걸리나요?", blocked: false},
		{name: "empty utterance", in: "", blocked: false},
		{name: "whitespace only", in: "   ", blocked: false},
	}

	for _, tc := range cases {
		if got := filter.IsBlocked(tc.in); got != tc.blocked {
			t.Fatalf("%s: expected blocked=%v got %v", tc.name, tc.blocked, got)
		}
	}
}

func TestFilterEmptyListNeverBlocks(t *testing.T) {
	filter := NewFilter(nil)
	require.False(t, filter.IsBlocked("폭력"))
	require.False(t, filter.IsBlocked(""))

	blanks := NewFilter([]string{"", "   "})
	require.Empty(t, blanks.Keywords())
	require.False(t, blanks.IsBlocked("anything at all"))
}

func TestFilterMatchReportsEarliestKeyword(t *testing.T) {
	filter := NewFilter([]string{"혐오", "폭력"})

	kw, ok := filter.Match("폭력과 혐오 표현")
	require.True(t, ok)
	require.Equal(t, "혐오", kw)

	_, ok = filter.Match("좋은 하루")
	require.False(t, ok)
}

func TestNewFilterNormalizesKeywords(t *testing.T) {
	filter := NewFilter([]string{"SPAM", "spam", " Scam "})
	require.Equal(t, []string{"spam", "scam"}, filter.Keywords())
}

func TestFilterContainsEveryKeyword(t *testing.T) {
	filter := NewFilter(DefaultBlockedKeywords)
	for _, kw := range DefaultBlockedKeywords {
		require.True(t, filter.IsBlocked("prefix "+kw+" suffix"), kw)
	}
}

func TestNilFilter(t *testing.T) {
	var filter *Filter
	require.False(t, filter.IsBlocked("폭력"))
	require.Nil(t, filter.Keywords())
}
