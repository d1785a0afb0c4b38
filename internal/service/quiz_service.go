package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"docqa/internal/config"
	"docqa/internal/model"
	appErr "docqa/internal/pkg/errors"
	"docqa/internal/vecstore"
)

const (
	quizMaxTokens      = 4096
	quizTemperature    = 0.5
	quizExcerptLen     = 600
	quizContextCeiling = 5000
	defaultQuizCount   = 5

	quizDiscoveryQuery = "comprehensive overview topics concepts"
)

// QuizService generates multiple-choice quizzes from a session's
// documents.
type QuizService struct {
	retriever Retriever
	chat      Completer
	cfg       config.RetrievalConfig
}

func NewQuizService(retriever Retriever, chat Completer, cfg config.RetrievalConfig) *QuizService {
	return &QuizService{retriever: retriever, chat: chat, cfg: cfg}
}

func (s *QuizService) Generate(ctx context.Context, sessionID string, count int, files []string) ([]*model.MCQItem, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("session_id", sessionID))
	if count <= 0 {
		count = defaultQuizCount
	}
	passages, err := s.retriever.Search(ctx, sessionID, quizDiscoveryQuery, vecstore.ScopeForFiles(files), s.cfg.TopK)
	if err != nil {
		return nil, err
	}
	if len(passages) == 0 {
		return nil, fmt.Errorf("%w: no documents found for quiz generation", appErr.ErrNotFound)
	}

	// Short excerpts keep the request payload small; two excerpts per
	// question is enough material.
	excerpts := make([]vecstore.Passage, 0, len(passages))
	for _, p := range passages {
		content := p.Content
		if runes := []rune(content); len(runes) > quizExcerptLen {
			content = string(runes[:quizExcerptLen])
		}
		excerpts = append(excerpts, vecstore.Passage{Content: content, Source: p.Source})
	}
	selected := balanceBySource(excerpts, 0, count*2)
	combined := strings.Join(selected, "\n\n")
	if runes := []rune(combined); len(runes) > quizContextCeiling {
		logger.Warn("truncating quiz context", zap.Int("from", len(runes)), zap.Int("to", quizContextCeiling))
		combined = string(runes[:quizContextCeiling])
	}

	resp := s.chat.CompleteText(ctx, buildQuizPrompt([]string{combined}, count), quizMaxTokens, quizTemperature)
	items, err := parseQuizResponse(resp)
	if err != nil {
		logger.Error("failed to parse quiz response", zap.Error(err), zap.Int("resp_len", len(resp)))
		return nil, fmt.Errorf("%w: %v", appErr.ErrParseFailed, err)
	}
	if len(items) > count {
		items = items[:count]
	}
	logger.Info("quiz generated", zap.Int("requested", count), zap.Int("produced", len(items)))
	return items, nil
}

// parseQuizResponse repairs common model formatting noise around the
// JSON array before decoding: surrounding prose, markdown code fences,
// trailing remarks.
func parseQuizResponse(resp string) ([]*model.MCQItem, error) {
	resp = strings.TrimSpace(resp)
	if strings.HasPrefix(resp, "```") {
		if idx := strings.Index(resp, "\n"); idx >= 0 {
			resp = resp[idx+1:]
		} else {
			resp = ""
		}
	}
	if strings.HasSuffix(resp, "```") {
		resp = resp[:strings.LastIndex(resp, "```")]
	}
	resp = strings.TrimSpace(resp)
	start := strings.Index(resp, "[")
	end := strings.LastIndex(resp, "]")
	if start != -1 && end > start {
		resp = resp[start : end+1]
	}

	var raw []struct {
		Question      string            `json:"question"`
		Choices       map[string]string `json:"choices"`
		CorrectAnswer string            `json:"correct_answer"`
	}
	if err := json.Unmarshal([]byte(resp), &raw); err != nil {
		return nil, fmt.Errorf("decode quiz array: %v", err)
	}
	items := make([]*model.MCQItem, 0, len(raw))
	for _, r := range raw {
		choices := r.Choices
		if choices == nil {
			choices = map[string]string{}
		}
		items = append(items, &model.MCQItem{
			Question:      r.Question,
			Choices:       choices,
			CorrectAnswer: r.CorrectAnswer,
		})
	}
	return items, nil
}
