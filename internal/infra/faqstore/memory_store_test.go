package faqstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
)

func TestMemoryStoreTopQueries(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.IncrementQuery(ctx, "배송은 얼마나 걸리나요", "배송은 얼마나 걸리나요?"))
	require.NoError(t, store.IncrementQuery(ctx, "배송은 얼마나 걸리나요", "ignored display"))
	require.NoError(t, store.IncrementQuery(ctx, "환불은 어떻게 하나요", "환불은 어떻게 하나요?"))
	require.NoError(t, store.IncrementQuery(ctx, "", "skipped"))

	top, err := store.TopQueries(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []faq.TrendingQuery{
		{Query: "배송은 얼마나 걸리나요?", Count: 2},
		{Query: "환불은 어떻게 하나요?", Count: 1},
	}, top)

	top, err = store.TopQueries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
}

func TestMemoryStoreEmpty(t *testing.T) {
	top, err := NewMemoryStore().TopQueries(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, top)
}
