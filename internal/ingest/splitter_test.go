package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitterShortInputSingleChunk(t *testing.T) {
	s := NewSplitter(300, 60)
	require.Equal(t, []string{"hello world"}, s.Split("hello world"))
}

func TestSplitterEmptyInput(t *testing.T) {
	s := NewSplitter(300, 60)
	require.Empty(t, s.Split(""))
	require.Empty(t, s.Split("   \n\n  "))
}

func TestSplitterKeepsParagraphsIntact(t *testing.T) {
	s := NewSplitter(10, 3)
	got := s.Split("para one.\n\npara two.")
	require.Equal(t, []string{"para one.", "para two."}, got)
}

func TestSplitterWordMergeWithOverlap(t *testing.T) {
	s := NewSplitter(10, 3)
	got := s.Split("aa bb cc dd ee")
	require.Equal(t, []string{"aa bb cc", "cc dd ee"}, got)
}

func TestSplitterHardCutUnbrokenRun(t *testing.T) {
	s := NewSplitter(10, 3)
	got := s.Split(strings.Repeat("a", 25))
	require.Len(t, got, 4)
	require.Equal(t, strings.Repeat("a", 10), got[0])
	require.Equal(t, strings.Repeat("a", 10), got[1])
	require.Equal(t, strings.Repeat("a", 10), got[2])
	require.Equal(t, strings.Repeat("a", 4), got[3])
}

func TestSplitterChunksNeverExceedSize(t *testing.T) {
	s := NewSplitter(50, 10)
	input := strings.Repeat("some words in a sentence here. ", 40)
	for _, chunk := range s.Split(input) {
		require.LessOrEqual(t, len([]rune(chunk)), 50)
	}
}

func TestSplitterCountsRunes(t *testing.T) {
	s := NewSplitter(10, 0)
	// 12 CJK runes, 36 bytes: must split by rune count, not bytes.
	got := s.Split(strings.Repeat("漢", 12))
	require.Len(t, got, 2)
	require.Equal(t, strings.Repeat("漢", 10), got[0])
	require.Equal(t, strings.Repeat("漢", 2), got[1])
}

func TestNewSplitterDefaults(t *testing.T) {
	s := NewSplitter(0, -1)
	require.Equal(t, 300, s.chunkSize)
	require.Equal(t, 0, s.overlap)

	s = NewSplitter(10, 10)
	require.Equal(t, 0, s.overlap)
}
