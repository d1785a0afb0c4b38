package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"docqa/internal/model"
	"docqa/internal/vecstore"
)

func newTestAnswerService(retriever *fakeRetriever, chat *fakeCompleter, messages *fakeMessageStore, suggestRetriever *fakeRetriever) *AnswerService {
	suggester := NewSuggestService(suggestRetriever, &fakeCompleter{resp: "1. follow up?"}, testRetrievalConfig)
	return NewAnswerService(retriever, chat, messages, suggester, testRetrievalConfig)
}

func TestAnswerEmptyRetrievalReturnsFallback(t *testing.T) {
	retriever := &fakeRetriever{}
	chat := &fakeCompleter{resp: "should not be called"}
	messages := &fakeMessageStore{}
	svc := newTestAnswerService(retriever, chat, messages, &fakeRetriever{})

	result, err := svc.Answer(context.Background(), "sess", "what is X?", nil)
	require.NoError(t, err)
	require.Equal(t, fallbackAnswer, result.Answer)
	require.Empty(t, result.Sources)
	require.Zero(t, chat.calls)

	// The question still lands in history.
	require.Len(t, messages.appended, 1)
	require.Equal(t, model.RoleUser, messages.appended[0].Role)
	require.Equal(t, "what is X?", messages.appended[0].Content)
}

func TestAnswerPersistsExchangeWithSources(t *testing.T) {
	retriever := &fakeRetriever{passages: []vecstore.Passage{
		{Content: "c1", Source: "a.txt"},
		{Content: "c2", Source: "b.txt"},
		{Content: "c3", Source: "a.txt"},
	}}
	chat := &fakeCompleter{resp: "the answer"}
	messages := &fakeMessageStore{}
	suggestRetriever := &fakeRetriever{passages: passagesFor("a.txt", 1)}
	svc := newTestAnswerService(retriever, chat, messages, suggestRetriever)

	result, err := svc.Answer(context.Background(), "sess", "question", []string{"a.txt", "b.txt"})
	require.NoError(t, err)
	require.Equal(t, "the answer", result.Answer)
	require.Equal(t, []string{"a.txt", "b.txt"}, result.Sources)
	require.Equal(t, []string{"follow up?"}, result.Suggestions)
	require.Equal(t, 15, retriever.gotK)
	require.Equal(t, []string{"a.txt", "b.txt"}, retriever.gotScope.Sources)
	require.Equal(t, answerMaxTokens, chat.gotMaxTokens)
	require.InDelta(t, answerTemperature, chat.gotTemp, 1e-6)

	require.Len(t, messages.appended, 2)
	require.Equal(t, model.RoleUser, messages.appended[0].Role)
	assistant := messages.appended[1]
	require.Equal(t, model.RoleAssistant, assistant.Role)
	require.Equal(t, "the answer", assistant.Content)
	require.NotNil(t, assistant.Meta)
	require.Equal(t, []string{"a.txt", "b.txt"}, assistant.Meta.Sources)
}

func TestAnswerSuggestionFailureDoesNotFailQuery(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("a.txt", 2)}
	chat := &fakeCompleter{resp: "answer"}
	messages := &fakeMessageStore{}
	suggestRetriever := &fakeRetriever{err: errors.New("index down")}
	svc := newTestAnswerService(retriever, chat, messages, suggestRetriever)

	result, err := svc.Answer(context.Background(), "sess", "question", nil)
	require.NoError(t, err)
	require.Equal(t, "answer", result.Answer)
	require.Empty(t, result.Suggestions)
}

func TestAnswerHistoryLoadFailureDegradesSuggestions(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("a.txt", 1)}
	messages := &fakeMessageStore{listErr: errors.New("db down")}
	suggestRetriever := &fakeRetriever{passages: passagesFor("a.txt", 1)}
	svc := newTestAnswerService(retriever, &fakeCompleter{resp: "answer"}, messages, suggestRetriever)

	result, err := svc.Answer(context.Background(), "sess", "question", nil)
	require.NoError(t, err)
	require.Empty(t, result.Suggestions)
	// The suggester never ran without history.
	require.Zero(t, suggestRetriever.calls)
}

func TestAnswerRetrieverErrorFailsQuery(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("index down")}
	messages := &fakeMessageStore{}
	svc := newTestAnswerService(retriever, &fakeCompleter{}, messages, &fakeRetriever{})

	_, err := svc.Answer(context.Background(), "sess", "question", nil)
	require.Error(t, err)
	require.Empty(t, messages.appended)
}

func TestAnswerInlineBackendErrorStillPersisted(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("a.txt", 1)}
	chat := &fakeCompleter{resp: "Error: could not get a response from the generation backend: timeout"}
	messages := &fakeMessageStore{}
	svc := newTestAnswerService(retriever, chat, messages, &fakeRetriever{})

	result, err := svc.Answer(context.Background(), "sess", "question", nil)
	require.NoError(t, err)
	require.Contains(t, result.Answer, "Error:")
	require.Len(t, messages.appended, 2)
	require.Equal(t, result.Answer, messages.appended[1].Content)
}
