package service

import (
	"context"

	"docqa/internal/ai"
	"docqa/internal/model"
	"docqa/internal/vecstore"
)

// Retriever is the query side of the vector index.
type Retriever interface {
	Search(ctx context.Context, collection, query string, scope *vecstore.Scope, k int) ([]vecstore.Passage, error)
}

// VectorIndex is the full index surface used by session and file
// management.
type VectorIndex interface {
	Retriever
	EnsureCollection(ctx context.Context, name string, dim int, metric string) error
	EnsurePayloadIndex(ctx context.Context, collection, field string) error
	DeleteWhere(ctx context.Context, collection, field, value string) error
}

// Completer produces chat completion text. Transport failures surface
// as inline error text, never as a Go error.
type Completer interface {
	CompleteText(ctx context.Context, messages []ai.Message, maxTokens int, temperature float32) string
}

type MessageStore interface {
	Append(ctx context.Context, msg *model.ChatMessage) error
	ListRecent(ctx context.Context, sessionID string, limit int) ([]*model.ChatMessage, error)
}

// Indexer chunks and indexes extracted document text.
type Indexer interface {
	IngestText(ctx context.Context, collection, filename, content string) (int, error)
}
