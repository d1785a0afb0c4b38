package service

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"docqa/internal/config"
	"docqa/internal/model"
	"docqa/internal/vecstore"
)

const (
	answerMaxTokens   = 2048
	answerTemperature = 0.1
	historyWindow     = 6

	fallbackAnswer = "I couldn't find relevant information in the specified documents. " +
		"Please try a different query or check if the files are uploaded correctly."
)

type AnswerResult struct {
	Answer      string   `json:"answer"`
	Sources     []string `json:"sources"`
	Suggestions []string `json:"suggestions"`
}

// AnswerService answers a question strictly from a session's indexed
// documents, records the exchange, and attaches follow-up suggestions.
type AnswerService struct {
	retriever Retriever
	chat      Completer
	messages  MessageStore
	suggester *SuggestService
	cfg       config.RetrievalConfig
}

func NewAnswerService(retriever Retriever, chat Completer, messages MessageStore, suggester *SuggestService, cfg config.RetrievalConfig) *AnswerService {
	return &AnswerService{
		retriever: retriever,
		chat:      chat,
		messages:  messages,
		suggester: suggester,
		cfg:       cfg,
	}
}

func (s *AnswerService) Answer(ctx context.Context, sessionID, query string, files []string) (*AnswerResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("session_id", sessionID))
	passages, err := s.retriever.Search(ctx, sessionID, query, vecstore.ScopeForFiles(files), s.cfg.TopK)
	if err != nil {
		return nil, err
	}
	// The question enters history before generation so a failed
	// generation still leaves the query on record.
	if err := s.messages.Append(ctx, &model.ChatMessage{
		SessionID: sessionID,
		Role:      model.RoleUser,
		Content:   query,
		Ctime:     time.Now().Unix(),
	}); err != nil {
		return nil, err
	}
	if len(passages) == 0 {
		logger.Info("no passages retrieved, returning fallback answer")
		return &AnswerResult{
			Answer:      fallbackAnswer,
			Sources:     []string{},
			Suggestions: s.suggester.TryGenerate(ctx, sessionID, nil, files),
		}, nil
	}

	contexts := make([]string, 0, len(passages))
	for _, p := range passages {
		contexts = append(contexts, p.Content)
	}
	sources := dedupSources(passages)

	answer := s.chat.CompleteText(ctx, buildStrictContextPrompt(query, contexts), answerMaxTokens, answerTemperature)
	if err := s.messages.Append(ctx, &model.ChatMessage{
		SessionID: sessionID,
		Role:      model.RoleAssistant,
		Content:   answer,
		Meta:      &model.MessageMeta{Sources: sources},
		Ctime:     time.Now().Unix(),
	}); err != nil {
		return nil, err
	}

	var suggestions []string
	history, err := s.messages.ListRecent(ctx, sessionID, historyWindow)
	if err != nil {
		logger.Warn("failed to load history for suggestions", zap.Error(err))
	} else {
		suggestions = s.suggester.TryGenerate(ctx, sessionID, history, files)
	}
	logger.Info("query answered",
		zap.Int("passages", len(passages)),
		zap.Int("sources", len(sources)),
		zap.Int("suggestions", len(suggestions)),
	)
	return &AnswerResult{
		Answer:      answer,
		Sources:     sources,
		Suggestions: suggestions,
	}, nil
}
