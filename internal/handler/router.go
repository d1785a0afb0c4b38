package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"docqa/internal/middleware"
)

// Generation endpoints burn model tokens, so back-to-back calls from
// the same client are throttled.
const generationRateWindow = time.Second

type RouterDeps struct {
	Sessions *SessionHandler
	Files    *FileHandler
	QA       *QAHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/sessions", deps.Sessions.Create)
	api.GET("/sessions", deps.Sessions.List)
	api.GET("/sessions/:id", deps.Sessions.Get)

	api.POST("/files/upload", deps.Files.Upload)
	api.POST("/files/delete", deps.Files.Delete)
	api.GET("/files/:key", deps.Files.Get)

	qa := api.Group("/qa")
	qa.Use(middleware.RateLimit(generationRateWindow))
	qa.POST("/query", deps.QA.Query)
	qa.POST("/suggestions", deps.QA.Suggestions)
	qa.POST("/quiz", deps.QA.Quiz)
}
