package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"docqa/internal/model"
	"docqa/internal/pkg/dbutil"
	appErr "docqa/internal/pkg/errors"
)

type SessionFileRepo struct {
	db *sql.DB
}

func NewSessionFileRepo(db *sql.DB) *SessionFileRepo {
	return &SessionFileRepo{db: db}
}

func (r *SessionFileRepo) Add(ctx context.Context, file *model.SessionFile) error {
	data := map[string]interface{}{
		"session_id": file.SessionID,
		"filename":   file.Filename,
		"size":       file.Size,
		"store_key":  file.StoreKey,
		"ctime":      file.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("session_files", []map[string]interface{}{data})
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

func (r *SessionFileRepo) Get(ctx context.Context, sessionID, filename string) (*model.SessionFile, error) {
	where := map[string]interface{}{
		"session_id": sessionID,
		"filename":   filename,
	}
	sqlStr, args, err := builder.BuildSelect("session_files", where, []string{"session_id", "filename", "size", "store_key", "ctime"})
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
	var file model.SessionFile
	if err := rows.Scan(&file.SessionID, &file.Filename, &file.Size, &file.StoreKey, &file.Ctime); err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *SessionFileRepo) List(ctx context.Context, sessionID string) ([]*model.SessionFile, error) {
	where := map[string]interface{}{
		"session_id": sessionID,
		"_orderby":   "ctime asc",
	}
	sqlStr, args, err := builder.BuildSelect("session_files", where, []string{"session_id", "filename", "size", "store_key", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var files []*model.SessionFile
	for rows.Next() {
		var file model.SessionFile
		if err := rows.Scan(&file.SessionID, &file.Filename, &file.Size, &file.StoreKey, &file.Ctime); err != nil {
			return nil, err
		}
		files = append(files, &file)
	}
	return files, rows.Err()
}

func (r *SessionFileRepo) Remove(ctx context.Context, sessionID, filename string) error {
	where := map[string]interface{}{
		"session_id": sessionID,
		"filename":   filename,
	}
	sqlStr, args, err := builder.BuildDelete("session_files", where)
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
