package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"docqa/internal/config"
	"docqa/internal/model"
	"docqa/internal/vecstore"
)

const (
	suggestionMaxTokens   = 200
	suggestionTemperature = 0.7
	maxSuggestions        = 3

	// Search query used when there is no conversation to anchor on.
	discoveryQuery = "find the main topics, key concepts, and important entities from all uploaded files"

	suggestionListMarkers = "0123456789.-•) \t"
)

// SuggestService proposes up to three follow-up questions grounded in
// the session's documents.
type SuggestService struct {
	retriever Retriever
	chat      Completer
	cfg       config.RetrievalConfig
}

func NewSuggestService(retriever Retriever, chat Completer, cfg config.RetrievalConfig) *SuggestService {
	return &SuggestService{retriever: retriever, chat: chat, cfg: cfg}
}

// Generate builds suggestions for a session. With fewer than two
// history messages it runs in discovery mode: a wider retrieval that is
// balanced across source files. Otherwise it anchors retrieval on the
// last user queries and keeps passages in relevance order.
func (s *SuggestService) Generate(ctx context.Context, collection string, history []*model.ChatMessage, files []string) ([]string, error) {
	initial := len(history) < 2
	k := s.cfg.TopK
	if initial {
		k = s.cfg.SuggestTopK
	}
	searchQuery := discoveryQuery
	if !initial {
		if recent := recentUserQueries(history, 3); len(recent) > 0 {
			searchQuery = strings.Join(recent, " ")
		}
	}
	passages, err := s.retriever.Search(ctx, collection, searchQuery, vecstore.ScopeForFiles(files), k)
	if err != nil {
		return nil, err
	}
	if len(passages) == 0 {
		return nil, nil
	}
	var contexts []string
	if initial {
		contexts = balanceBySource(passages, s.cfg.PerSourceCap, s.cfg.GlobalCap)
	} else {
		contexts = make([]string, 0, len(passages))
		for _, p := range passages {
			contexts = append(contexts, p.Content)
		}
	}
	prompt := buildSuggestionPrompt(strings.Join(contexts, suggestContextSeparator), history)
	resp := s.chat.CompleteText(ctx, prompt, suggestionMaxTokens, suggestionTemperature)
	if strings.HasPrefix(resp, "Error:") {
		logutil.GetLogger(ctx).Warn("suggestion generation failed", zap.String("collection", collection))
		return nil, nil
	}
	return cleanSuggestionLines(resp), nil
}

// TryGenerate is the best-effort form: any failure degrades to an
// empty list so suggestions never break a primary operation.
func (s *SuggestService) TryGenerate(ctx context.Context, collection string, history []*model.ChatMessage, files []string) []string {
	suggestions, err := s.Generate(ctx, collection, history, files)
	if err != nil {
		logutil.GetLogger(ctx).Warn("suggestion generation failed",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return nil
	}
	return suggestions
}

func recentUserQueries(history []*model.ChatMessage, n int) []string {
	var queries []string
	for _, msg := range history {
		if msg.Role == model.RoleUser && msg.Content != "" {
			queries = append(queries, msg.Content)
		}
	}
	if len(queries) > n {
		queries = queries[len(queries)-n:]
	}
	return queries
}

// cleanSuggestionLines strips list markers the model tends to prefix
// and caps the result at maxSuggestions.
func cleanSuggestionLines(resp string) []string {
	var suggestions []string
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cleaned := strings.TrimLeft(line, suggestionListMarkers)
		if cleaned == "" {
			continue
		}
		suggestions = append(suggestions, cleaned)
		if len(suggestions) >= maxSuggestions {
			break
		}
	}
	return suggestions
}
