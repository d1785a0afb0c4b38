package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"docqa/internal/vecstore"
)

func passagesFor(source string, count int) []vecstore.Passage {
	out := make([]vecstore.Passage, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, vecstore.Passage{
			Content: fmt.Sprintf("%s-%d", source, i),
			Source:  source,
		})
	}
	return out
}

func TestBalanceBySourceInterleaves(t *testing.T) {
	passages := append(passagesFor("a", 15), passagesFor("b", 3)...)
	got := balanceBySource(passages, 10, 30)
	want := []string{
		"a-1", "b-1", "a-2", "b-2", "a-3", "b-3",
		"a-4", "a-5", "a-6", "a-7", "a-8", "a-9", "a-10",
	}
	require.Equal(t, want, got)
}

func TestBalanceBySourceGlobalCap(t *testing.T) {
	var passages []vecstore.Passage
	for _, src := range []string{"a", "b", "c", "d"} {
		passages = append(passages, passagesFor(src, 10)...)
	}
	got := balanceBySource(passages, 10, 30)
	require.Len(t, got, 30)
	// First round touches every source once, in first-seen order.
	require.Equal(t, []string{"a-1", "b-1", "c-1", "d-1"}, got[:4])
}

func TestBalanceBySourceNoPerSourceCap(t *testing.T) {
	passages := append(passagesFor("a", 5), passagesFor("b", 1)...)
	got := balanceBySource(passages, 0, 10)
	require.Equal(t, []string{"a-1", "b-1", "a-2", "a-3", "a-4", "a-5"}, got)
}

func TestBalanceBySourceDeterministic(t *testing.T) {
	passages := append(passagesFor("x", 7), passagesFor("y", 4)...)
	first := balanceBySource(passages, 10, 30)
	second := balanceBySource(passages, 10, 30)
	require.Equal(t, first, second)
}

func TestBalanceBySourceEmpty(t *testing.T) {
	require.Nil(t, balanceBySource(nil, 10, 30))
}

func TestBalanceBySourceUnknownSourceBucket(t *testing.T) {
	passages := []vecstore.Passage{
		{Content: "one"},
		{Content: "two", Source: "a"},
		{Content: "three"},
	}
	got := balanceBySource(passages, 10, 30)
	require.Equal(t, []string{"one", "two", "three"}, got)
}

func TestDedupSourcesKeepsFirstSeenOrder(t *testing.T) {
	passages := []vecstore.Passage{
		{Content: "1", Source: "b"},
		{Content: "2", Source: "a"},
		{Content: "3", Source: "b"},
		{Content: "4", Source: "a"},
		{Content: "5", Source: "c"},
	}
	require.Equal(t, []string{"b", "a", "c"}, dedupSources(passages))
}
