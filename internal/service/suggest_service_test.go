package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"docqa/internal/config"
	"docqa/internal/model"
	"docqa/internal/vecstore"
)

var testRetrievalConfig = config.RetrievalConfig{
	TopK:         15,
	SuggestTopK:  20,
	PerSourceCap: 10,
	GlobalCap:    30,
}

func TestSuggestInitialModeWidensRetrieval(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("doc.txt", 3)}
	chat := &fakeCompleter{resp: "1. What is A?\n2. What is B?\n3. What is C?"}
	svc := NewSuggestService(retriever, chat, testRetrievalConfig)

	got, err := svc.Generate(context.Background(), "sess", nil, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"What is A?", "What is B?", "What is C?"}, got)
	require.Equal(t, 20, retriever.gotK)
	require.Equal(t, discoveryQuery, retriever.gotQuery)
	require.Nil(t, retriever.gotScope)
}

func TestSuggestFollowupModeAnchorsOnRecentQueries(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("doc.txt", 2)}
	chat := &fakeCompleter{resp: "1. Next question?"}
	svc := NewSuggestService(retriever, chat, testRetrievalConfig)

	history := []*model.ChatMessage{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleAssistant, Content: "answer one"},
		{Role: model.RoleUser, Content: "second"},
		{Role: model.RoleAssistant, Content: "answer two"},
		{Role: model.RoleUser, Content: "third"},
		{Role: model.RoleAssistant, Content: "answer three"},
		{Role: model.RoleUser, Content: "fourth"},
		{Role: model.RoleAssistant, Content: "answer four"},
	}
	got, err := svc.Generate(context.Background(), "sess", history, []string{"doc.txt"})
	require.NoError(t, err)
	require.Equal(t, []string{"Next question?"}, got)
	require.Equal(t, 15, retriever.gotK)
	// Only the last three user queries drive retrieval.
	require.Equal(t, "second third fourth", retriever.gotQuery)
	require.NotNil(t, retriever.gotScope)
	require.Equal(t, []string{"doc.txt"}, retriever.gotScope.Sources)
}

func TestSuggestEmptyRetrievalSkipsBackend(t *testing.T) {
	retriever := &fakeRetriever{}
	chat := &fakeCompleter{resp: "should not be used"}
	svc := NewSuggestService(retriever, chat, testRetrievalConfig)

	got, err := svc.Generate(context.Background(), "sess", nil, nil)
	require.NoError(t, err)
	require.Nil(t, got)
	require.Zero(t, chat.calls)
}

func TestSuggestBackendFailureDegradesToEmpty(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("doc.txt", 1)}
	chat := &fakeCompleter{resp: "Error: could not get a response from the generation backend: boom"}
	svc := NewSuggestService(retriever, chat, testRetrievalConfig)

	got, err := svc.Generate(context.Background(), "sess", nil, nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSuggestRetrieverErrorPropagatesAndTryGenerateSwallows(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("index down")}
	svc := NewSuggestService(retriever, &fakeCompleter{}, testRetrievalConfig)

	_, err := svc.Generate(context.Background(), "sess", nil, nil)
	require.Error(t, err)
	require.Nil(t, svc.TryGenerate(context.Background(), "sess", nil, nil))
}

func TestSuggestCapsAtThree(t *testing.T) {
	retriever := &fakeRetriever{passages: passagesFor("doc.txt", 1)}
	chat := &fakeCompleter{resp: "1. one?\n2. two?\n3. three?\n4. four?\n5. five?"}
	svc := NewSuggestService(retriever, chat, testRetrievalConfig)

	got, err := svc.Generate(context.Background(), "sess", nil, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"one?", "two?", "three?"}, got)
}

func TestCleanSuggestionLines(t *testing.T) {
	resp := "1. First question?\n\n- Second question?\n• Third question?"
	require.Equal(t, []string{"First question?", "Second question?", "Third question?"}, cleanSuggestionLines(resp))
}

func TestBuildSuggestionPromptPairsTurns(t *testing.T) {
	long := strings.Repeat("x", 600)
	history := []*model.ChatMessage{
		{Role: model.RoleSystem, Content: "Uploaded doc.txt"},
		{Role: model.RoleUser, Content: "what is pgvector?"},
		{Role: model.RoleAssistant, Content: long},
		{Role: model.RoleUser, Content: "unanswered"},
	}
	messages := buildSuggestionPrompt("ctx", history)
	require.Len(t, messages, 2)
	require.Equal(t, model.RoleSystem, messages[0].Role)
	require.Equal(t, followupSuggestionSystem, messages[0].Content)

	user := messages[1].Content
	require.Contains(t, user, "--- Turn 1 ---")
	require.NotContains(t, user, "--- Turn 2 ---")
	require.Contains(t, user, "User: what is pgvector?")
	// Long answers are truncated with an ellipsis marker.
	require.Contains(t, user, strings.Repeat("x", 500)+"...")
	require.NotContains(t, user, strings.Repeat("x", 501))
	// The trailing user query has no paired answer and is dropped.
	require.NotContains(t, user, "unanswered")
}

func TestBuildSuggestionPromptInitialMode(t *testing.T) {
	messages := buildSuggestionPrompt("some context", nil)
	require.Len(t, messages, 2)
	require.Equal(t, initialSuggestionSystem, messages[0].Content)
	require.Equal(t, "CONTEXT:\nsome context", messages[1].Content)
}

func TestSuggestInitialModeBalancesAcrossSources(t *testing.T) {
	passages := append(passagesFor("a", 4), passagesFor("b", 4)...)
	retriever := &fakeRetriever{passages: passages}
	chat := &fakeCompleter{resp: "1. q?"}
	svc := NewSuggestService(retriever, chat, testRetrievalConfig)

	_, err := svc.Generate(context.Background(), "sess", nil, nil)
	require.NoError(t, err)
	contexts := strings.Split(strings.TrimPrefix(chat.gotMessages[1].Content, "CONTEXT:\n"), suggestContextSeparator)
	require.Equal(t, []string{"a-1", "b-1", "a-2", "b-2", "a-3", "b-3", "a-4", "b-4"}, contexts)
}

func TestSuggestFollowupModeKeepsRelevanceOrder(t *testing.T) {
	passages := []vecstore.Passage{
		{Content: "c1", Source: "a"},
		{Content: "c2", Source: "b"},
		{Content: "c3", Source: "a"},
	}
	retriever := &fakeRetriever{passages: passages}
	chat := &fakeCompleter{resp: "1. q?"}
	svc := NewSuggestService(retriever, chat, testRetrievalConfig)

	history := []*model.ChatMessage{
		{Role: model.RoleUser, Content: "q"},
		{Role: model.RoleAssistant, Content: "a"},
	}
	_, err := svc.Generate(context.Background(), "sess", history, nil)
	require.NoError(t, err)
	require.Contains(t, chat.gotMessages[1].Content, "c1"+suggestContextSeparator+"c2"+suggestContextSeparator+"c3")
}
