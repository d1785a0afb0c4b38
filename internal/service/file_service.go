package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"docqa/internal/filestore"
	"docqa/internal/ingest"
	"docqa/internal/model"
	"docqa/internal/repo"
)

const (
	uploadStatusAccepted = "accepted"
	uploadStatusRejected = "rejected"
	fileStatusDeleted    = "deleted"
)

type UploadItem struct {
	Filename string
	Data     []byte
}

type UploadOutcome struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

type UploadResult struct {
	Results     []*UploadOutcome `json:"results"`
	Suggestions []string         `json:"suggestions"`
}

// FileService runs the upload pipeline: validate, extract, register,
// persist the original, index, and finally propose starter questions.
type FileService struct {
	sessions  *repo.SessionRepo
	files     *repo.SessionFileRepo
	messages  MessageStore
	store     filestore.Store
	indexer   Indexer
	vectors   VectorIndex
	suggester *SuggestService
	maxSize   int64
}

func NewFileService(
	sessions *repo.SessionRepo,
	files *repo.SessionFileRepo,
	messages MessageStore,
	store filestore.Store,
	indexer Indexer,
	vectors VectorIndex,
	suggester *SuggestService,
	maxFileSizeMB int,
) *FileService {
	return &FileService{
		sessions:  sessions,
		files:     files,
		messages:  messages,
		store:     store,
		indexer:   indexer,
		vectors:   vectors,
		suggester: suggester,
		maxSize:   int64(maxFileSizeMB) * 1024 * 1024,
	}
}

// Upload processes a batch of files into a session. Validation and
// extraction failures reject single files without failing the batch;
// indexing problems are logged and the file stays accepted. Initial
// suggestions at the end are best effort.
func (s *FileService) Upload(ctx context.Context, sessionID string, items []*UploadItem) (*UploadResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("session_id", sessionID))
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	type acceptedFile struct {
		filename string
		text     string
	}
	result := &UploadResult{Results: make([]*UploadOutcome, 0, len(items))}
	var accepted []acceptedFile
	for _, item := range items {
		if err := ingest.ValidateFile(item.Filename, int64(len(item.Data)), s.maxSize); err != nil {
			result.Results = append(result.Results, &UploadOutcome{
				Filename: item.Filename,
				Status:   uploadStatusRejected,
				Message:  err.Error(),
			})
			continue
		}
		text, err := ingest.ExtractText(item.Filename, item.Data)
		if err != nil {
			result.Results = append(result.Results, &UploadOutcome{
				Filename: item.Filename,
				Status:   uploadStatusRejected,
				Message:  fmt.Sprintf("extraction failed: %v", err),
			})
			continue
		}
		if err := s.registerFile(ctx, sessionID, item); err != nil {
			result.Results = append(result.Results, &UploadOutcome{
				Filename: item.Filename,
				Status:   uploadStatusRejected,
				Message:  err.Error(),
			})
			continue
		}
		accepted = append(accepted, acceptedFile{filename: item.Filename, text: text})
		result.Results = append(result.Results, &UploadOutcome{
			Filename: item.Filename,
			Status:   uploadStatusAccepted,
			Message:  "OK",
		})
	}
	if len(accepted) == 0 {
		return result, nil
	}
	for _, f := range accepted {
		if _, err := s.indexer.IngestText(ctx, sessionID, f.filename, f.text); err != nil {
			logger.Error("failed to index document", zap.String("filename", f.filename), zap.Error(err))
		}
	}
	result.Suggestions = s.suggester.TryGenerate(ctx, sessionID, nil, nil)
	return result, nil
}

func (s *FileService) registerFile(ctx context.Context, sessionID string, item *UploadItem) error {
	logger := logutil.GetLogger(ctx).With(zap.String("session_id", sessionID), zap.String("filename", item.Filename))
	storeKey := StoreKey(sessionID, item.Filename)
	if err := s.files.Add(ctx, &model.SessionFile{
		SessionID: sessionID,
		Filename:  item.Filename,
		Size:      int64(len(item.Data)),
		StoreKey:  storeKey,
		Ctime:     time.Now().Unix(),
	}); err != nil {
		return err
	}
	if err := s.store.Save(ctx, storeKey, newByteFile(item.Data), int64(len(item.Data))); err != nil {
		// Index and history still work without the raw original.
		logger.Warn("failed to persist original file", zap.Error(err))
	}
	if err := s.messages.Append(ctx, &model.ChatMessage{
		SessionID: sessionID,
		Role:      model.RoleSystem,
		Content:   "Uploaded " + item.Filename,
		Meta:      &model.MessageMeta{Status: uploadStatusAccepted},
		Ctime:     time.Now().Unix(),
	}); err != nil {
		logger.Warn("failed to record upload message", zap.Error(err))
	}
	return nil
}

// Delete removes a file's vectors, its registration, and its stored
// original, then leaves a system notice in the chat history.
func (s *FileService) Delete(ctx context.Context, sessionID, filename string) error {
	logger := logutil.GetLogger(ctx).With(zap.String("session_id", sessionID), zap.String("filename", filename))
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return err
	}
	if err := s.vectors.DeleteWhere(ctx, sessionID, "source", filename); err != nil {
		return err
	}
	if err := s.files.Remove(ctx, sessionID, filename); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, StoreKey(sessionID, filename)); err != nil {
		logger.Warn("failed to delete stored original", zap.Error(err))
	}
	if err := s.messages.Append(ctx, &model.ChatMessage{
		SessionID: sessionID,
		Role:      model.RoleSystem,
		Content:   "Deleted " + filename,
		Meta:      &model.MessageMeta{Status: fileStatusDeleted},
		Ctime:     time.Now().Unix(),
	}); err != nil {
		logger.Warn("failed to record delete message", zap.Error(err))
	}
	logger.Info("file deleted")
	return nil
}

// Open serves a stored original by key.
func (s *FileService) Open(ctx context.Context, key string) (filestore.ReadSeekCloser, error) {
	return s.store.Open(ctx, key)
}

// StoreKey flattens a session file reference into a single storage
// key.
func StoreKey(sessionID, filename string) string {
	return sessionID + "_" + filename
}

type byteFile struct {
	*bytes.Reader
}

func newByteFile(data []byte) *byteFile {
	return &byteFile{Reader: bytes.NewReader(data)}
}

func (b *byteFile) Close() error {
	return nil
}
