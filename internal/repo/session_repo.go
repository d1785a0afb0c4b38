package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"docqa/internal/model"
	"docqa/internal/pkg/dbutil"
	appErr "docqa/internal/pkg/errors"
)

type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, session *model.Session) error {
	data := map[string]interface{}{
		"id":      session.ID,
		"user_id": session.UserID,
		"name":    session.Name,
		"ctime":   session.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("chat_sessions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *SessionRepo) GetByID(ctx context.Context, sessionID string) (*model.Session, error) {
	where := map[string]interface{}{"id": sessionID}
	sqlStr, args, err := builder.BuildSelect("chat_sessions", where, []string{"id", "user_id", "name", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var session model.Session
	if err := rows.Scan(&session.ID, &session.UserID, &session.Name, &session.Ctime); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepo) List(ctx context.Context, userID string) ([]*model.Session, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "ctime desc",
	}
	sqlStr, args, err := builder.BuildSelect("chat_sessions", where, []string{"id", "user_id", "name", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var sessions []*model.Session
	for rows.Next() {
		var session model.Session
		if err := rows.Scan(&session.ID, &session.UserID, &session.Name, &session.Ctime); err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	where := map[string]interface{}{"id": sessionID}
	sqlStr, args, err := builder.BuildDelete("chat_sessions", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
