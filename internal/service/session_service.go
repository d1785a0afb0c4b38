package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"docqa/internal/model"
	appErr "docqa/internal/pkg/errors"
	"docqa/internal/repo"
	"docqa/internal/vecstore"
)

// SessionService manages chat sessions and their per-session vector
// collections.
type SessionService struct {
	sessions *repo.SessionRepo
	files    *repo.SessionFileRepo
	vectors  VectorIndex
	embedDim int
}

func NewSessionService(sessions *repo.SessionRepo, files *repo.SessionFileRepo, vectors VectorIndex, embedDim int) *SessionService {
	return &SessionService{
		sessions: sessions,
		files:    files,
		vectors:  vectors,
		embedDim: embedDim,
	}
}

// Create provisions a session: a fresh collection with a payload index
// on the source field, then the session record itself.
func (s *SessionService) Create(ctx context.Context, userID, name string) (*model.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", appErr.ErrInvalid)
	}
	session := &model.Session{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   strings.TrimSpace(name),
		Ctime:  time.Now().Unix(),
	}
	if err := s.vectors.EnsureCollection(ctx, session.ID, s.embedDim, vecstore.MetricCosine); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	if err := s.vectors.EnsurePayloadIndex(ctx, session.ID, "source"); err != nil {
		return nil, fmt.Errorf("create payload index: %w", err)
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("session created",
		zap.String("session_id", session.ID),
		zap.String("user_id", userID),
	)
	return session, nil
}

// Get returns a session together with its uploaded filenames.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*model.Session, []string, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	files, err := s.files.List(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}
	return session, names, nil
}

func (s *SessionService) List(ctx context.Context, userID string) ([]*model.Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", appErr.ErrInvalid)
	}
	return s.sessions.List(ctx, userID)
}
