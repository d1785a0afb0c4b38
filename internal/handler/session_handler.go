package handler

import (
	"github.com/gin-gonic/gin"

	"docqa/internal/pkg/errcode"
	"docqa/internal/pkg/response"
	"docqa/internal/service"
)

type SessionHandler struct {
	sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type sessionCreateRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req sessionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	session, err := h.sessions.Create(c.Request.Context(), req.UserID, req.Name)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"session_id": session.ID,
		"user_id":    session.UserID,
		"name":       session.Name,
	})
}

func (h *SessionHandler) Get(c *gin.Context) {
	session, files, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"session": session,
		"files":   files,
	})
}

func (h *SessionHandler) List(c *gin.Context) {
	userID := c.Query("user_id")
	sessions, err := h.sessions.List(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"user_id":  userID,
		"sessions": sessions,
	})
}
