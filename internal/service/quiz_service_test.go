package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "docqa/internal/pkg/errors"
	"docqa/internal/vecstore"
)

const quizArray = `[
	{"question": "What is A?", "choices": {"A": "1", "B": "2", "C": "3", "D": "4"}, "correct_answer": "A"},
	{"question": "What is B?", "choices": {"A": "1", "B": "2", "C": "3", "D": "4"}, "correct_answer": "C"}
]`

func TestQuizGenerateParsesCleanArray(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("doc.txt", 3)}
	chat := &fakeCompleter{resp: quizArray}
	svc := NewQuizService(retriever, chat, testRetrievalConfig)

	items, err := svc.Generate(context.Background(), "sess", 5, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "What is A?", items[0].Question)
	require.Equal(t, "A", items[0].CorrectAnswer)
	require.Equal(t, "2", items[0].Choices["B"])
	require.Equal(t, 15, retriever.gotK)
	require.Equal(t, quizDiscoveryQuery, retriever.gotQuery)
	require.Equal(t, quizMaxTokens, chat.gotMaxTokens)
	require.InDelta(t, quizTemperature, chat.gotTemp, 1e-6)
}

func TestQuizGenerateRepairsNoisyResponse(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("doc.txt", 3)}
	chat := &fakeCompleter{resp: "Here you go:\n```json\n" + quizArray + "\n```\nLet me know if you need more."}
	svc := NewQuizService(retriever, chat, testRetrievalConfig)

	items, err := svc.Generate(context.Background(), "sess", 5, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestQuizGenerateRepairsFencedResponse(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("doc.txt", 3)}
	chat := &fakeCompleter{resp: "```json\n" + quizArray + "\n```"}
	svc := NewQuizService(retriever, chat, testRetrievalConfig)

	items, err := svc.Generate(context.Background(), "sess", 5, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestQuizGenerateTruncatesToCount(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("doc.txt", 3)}
	chat := &fakeCompleter{resp: quizArray}
	svc := NewQuizService(retriever, chat, testRetrievalConfig)

	items, err := svc.Generate(context.Background(), "sess", 1, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "What is A?", items[0].Question)
}

func TestQuizGenerateMissingChoicesDefaultsEmptyMap(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("doc.txt", 1)}
	chat := &fakeCompleter{resp: `[{"question": "q?"}]`}
	svc := NewQuizService(retriever, chat, testRetrievalConfig)

	items, err := svc.Generate(context.Background(), "sess", 5, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Choices)
	require.Empty(t, items[0].Choices)
	require.Empty(t, items[0].CorrectAnswer)
}

func TestQuizGenerateNonArrayIsParseFailure(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("doc.txt", 1)}
	chat := &fakeCompleter{resp: `{"question": "not an array"}`}
	svc := NewQuizService(retriever, chat, testRetrievalConfig)

	_, err := svc.Generate(context.Background(), "sess", 5, nil)
	require.Error(t, err)
	require.True(t, appErr.IsParseFailed(err))
}

func TestQuizGenerateBackendErrorIsParseFailure(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("doc.txt", 1)}
	chat := &fakeCompleter{resp: "Error: could not get a response from the generation backend: timeout"}
	svc := NewQuizService(retriever, chat, testRetrievalConfig)

	_, err := svc.Generate(context.Background(), "sess", 5, nil)
	require.Error(t, err)
	require.True(t, appErr.IsParseFailed(err))
}

func TestQuizGenerateEmptyRetrievalIsNotFound(t *testing.T) {
	retriever := &fakeRetriever{}
	svc := NewQuizService(retriever, &fakeCompleter{}, testRetrievalConfig)

	_, err := svc.Generate(context.Background(), "sess", 5, nil)
	require.Error(t, err)
	require.True(t, appErr.IsNotFound(err))
}

func TestQuizGenerateTruncatesExcerpts(t *testing.T) {
	long := strings.Repeat("a", 1000)
	retriever := &fakeRetriever{passages: []vecstore.Passage{{Content: long, Source: "doc.txt"}}}
	chat := &fakeCompleter{resp: quizArray}
	svc := NewQuizService(retriever, chat, testRetrievalConfig)

	_, err := svc.Generate(context.Background(), "sess", 5, nil)
	require.NoError(t, err)
	user := chat.gotMessages[1].Content
	require.Contains(t, user, strings.Repeat("a", quizExcerptLen))
	require.NotContains(t, user, strings.Repeat("a", quizExcerptLen+1))
}

func TestQuizGenerateBalancesExcerptsAcrossSources(t *testing.T) {
	passages := append(passagesFor("a", 5), passagesFor("b", 5)...)
	retriever := &fakeRetriever{passages: passages}
	chat := &fakeCompleter{resp: quizArray}
	svc := NewQuizService(retriever, chat, testRetrievalConfig)

	// count 2 means at most 4 excerpts, alternating between sources.
	_, err := svc.Generate(context.Background(), "sess", 2, nil)
	require.NoError(t, err)
	user := chat.gotMessages[1].Content
	require.Contains(t, user, "a-1\n\nb-1\n\na-2\n\nb-2")
	require.NotContains(t, user, "a-3")
}

func TestQuizGenerateContextCeiling(t *testing.T) {
	var passages []vecstore.Passage
	for i := 0; i < 15; i++ {
		passages = append(passages, vecstore.Passage{
			Content: strings.Repeat("z", 700),
			Source:  "doc.txt",
		})
	}
	retriever := &fakeRetriever{passages: passages}
	chat := &fakeCompleter{resp: quizArray}
	svc := NewQuizService(retriever, chat, testRetrievalConfig)

	_, err := svc.Generate(context.Background(), "sess", 5, nil)
	require.NoError(t, err)
	user := chat.gotMessages[1].Content
	require.LessOrEqual(t, len([]rune(user)), len("CONTEXT:\n")+quizContextCeiling)
}

func TestParseQuizResponsePlainProse(t *testing.T) {
	_, err := parseQuizResponse("I cannot generate questions from this context.")
	require.Error(t, err)
}
