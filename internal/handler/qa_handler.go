package handler

import (
	"github.com/gin-gonic/gin"

	"docqa/internal/pkg/errcode"
	"docqa/internal/pkg/response"
	"docqa/internal/service"
)

type QAHandler struct {
	answers     *service.AnswerService
	suggestions *service.SuggestService
	quizzes     *service.QuizService
}

func NewQAHandler(answers *service.AnswerService, suggestions *service.SuggestService, quizzes *service.QuizService) *QAHandler {
	return &QAHandler{
		answers:     answers,
		suggestions: suggestions,
		quizzes:     quizzes,
	}
}

type queryRequest struct {
	SessionID string   `json:"session_id"`
	Query     string   `json:"query"`
	Files     []string `json:"files"`
}

func (h *QAHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.SessionID == "" || req.Query == "" {
		response.Error(c, errcode.ErrInvalid, "session_id and query are required")
		return
	}
	result, err := h.answers.Answer(c.Request.Context(), req.SessionID, req.Query, req.Files)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"session_id":  req.SessionID,
		"query":       req.Query,
		"answer":      result.Answer,
		"sources":     result.Sources,
		"suggestions": result.Suggestions,
	})
}

type suggestionRequest struct {
	SessionID string   `json:"session_id"`
	Files     []string `json:"files"`
}

func (h *QAHandler) Suggestions(c *gin.Context) {
	var req suggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.SessionID == "" {
		response.Error(c, errcode.ErrInvalid, "session_id is required")
		return
	}
	suggestions, err := h.suggestions.Generate(c.Request.Context(), req.SessionID, nil, req.Files)
	if err != nil {
		handleError(c, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	response.Success(c, gin.H{
		"session_id":  req.SessionID,
		"suggestions": suggestions,
	})
}

type quizRequest struct {
	SessionID string   `json:"session_id"`
	Count     int      `json:"count"`
	Files     []string `json:"files"`
}

func (h *QAHandler) Quiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.SessionID == "" {
		response.Error(c, errcode.ErrInvalid, "session_id is required")
		return
	}
	items, err := h.quizzes.Generate(c.Request.Context(), req.SessionID, req.Count, req.Files)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"session_id": req.SessionID,
		"items":      items,
	})
}
