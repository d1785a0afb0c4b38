package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"docqa/internal/ai"
	"docqa/internal/config"
	"docqa/internal/db"
	"docqa/internal/embedcache"
	"docqa/internal/filestore"
	"docqa/internal/handler"
	"docqa/internal/ingest"
	"docqa/internal/job"
	"docqa/internal/middleware"
	"docqa/internal/repo"
	"docqa/internal/schedule"
	"docqa/internal/service"
	"docqa/internal/vecstore"
)

const (
	embedLruSize = 10000
	embedLruTTL  = 2 * time.Hour
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "docqa",
		Short: "document q&a backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run docqa server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("chat_provider", cfg.AI.Chat.Provider),
		zap.String("embed_provider", cfg.AI.Embed.Provider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	sessionRepo := repo.NewSessionRepo(database)
	messageRepo := repo.NewMessageRepo(database)
	sessionFileRepo := repo.NewSessionFileRepo(database)
	embedCacheRepo := repo.NewEmbeddingCacheRepo(database)

	chatProvider, err := ai.NewChatProvider(cfg.AI.Chat.Provider, cfg.AI.Chat.Data)
	if err != nil {
		return fmt.Errorf("init chat provider: %w", err)
	}
	embedProvider, err := ai.NewEmbedProvider(cfg.AI.Embed.Provider, cfg.AI.Embed.Data)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}
	chat := ai.NewChatClient(chatProvider, cfg.AI.Chat.Model, time.Duration(cfg.AI.Timeout)*time.Second)
	// Embedding lookups go memory first, then the persistent cache,
	// then the backend.
	embedder := ai.NewEmbedder(embedProvider, cfg.AI.Embed.Model)
	embedder = embedcache.WrapDBCacheToEmbedder(embedder, embedCacheRepo)
	embedder = embedcache.WrapLruCacheToEmbedder(embedder, embedLruSize, embedLruTTL)

	vectors := vecstore.New(database, embedder)
	splitter := ingest.NewSplitter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	ingestor := ingest.NewIngestor(splitter, vectors)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	suggestService := service.NewSuggestService(vectors, chat, cfg.Retrieval)
	answerService := service.NewAnswerService(vectors, chat, messageRepo, suggestService, cfg.Retrieval)
	quizService := service.NewQuizService(vectors, chat, cfg.Retrieval)
	sessionService := service.NewSessionService(sessionRepo, sessionFileRepo, vectors, cfg.AI.EmbedDim)
	fileService := service.NewFileService(sessionRepo, sessionFileRepo, messageRepo, store, ingestor, vectors, suggestService, cfg.Ingest.MaxFileSizeMB)

	deps := handler.RouterDeps{
		Sessions: handler.NewSessionHandler(sessionService),
		Files:    handler.NewFileHandler(fileService),
		QA:       handler.NewQAHandler(answerService, suggestService, quizService),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	cleanupJob := job.NewEmbeddingCacheCleanupJob(embedCacheRepo, cfg.Jobs.EmbedCacheMaxAgeDays)
	if err := scheduler.AddJob(cleanupJob, cfg.Jobs.EmbedCacheCleanupSpec); err != nil {
		return fmt.Errorf("schedule cleanup job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
