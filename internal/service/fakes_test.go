package service

import (
	"context"

	"docqa/internal/ai"
	"docqa/internal/model"
	"docqa/internal/vecstore"
)

type fakeRetriever struct {
	passages []vecstore.Passage
	err      error

	gotQuery string
	gotScope *vecstore.Scope
	gotK     int
	calls    int
}

func (f *fakeRetriever) Search(ctx context.Context, collection, query string, scope *vecstore.Scope, k int) ([]vecstore.Passage, error) {
	f.calls++
	f.gotQuery = query
	f.gotScope = scope
	f.gotK = k
	return f.passages, f.err
}

type fakeCompleter struct {
	resp string

	gotMessages  []ai.Message
	gotMaxTokens int
	gotTemp      float32
	calls        int
}

func (f *fakeCompleter) CompleteText(ctx context.Context, messages []ai.Message, maxTokens int, temperature float32) string {
	f.calls++
	f.gotMessages = messages
	f.gotMaxTokens = maxTokens
	f.gotTemp = temperature
	return f.resp
}

type fakeMessageStore struct {
	appended  []*model.ChatMessage
	history   []*model.ChatMessage
	appendErr error
	listErr   error
}

func (f *fakeMessageStore) Append(ctx context.Context, msg *model.ChatMessage) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, msg)
	return nil
}

func (f *fakeMessageStore) ListRecent(ctx context.Context, sessionID string, limit int) ([]*model.ChatMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > 0 && len(f.history) > limit {
		return f.history[len(f.history)-limit:], nil
	}
	return f.history, nil
}
