package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"docqa/internal/model"
	"docqa/internal/pkg/dbutil"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Append(ctx context.Context, msg *model.ChatMessage) error {
	metadata := ""
	if msg.Meta != nil {
		raw, err := json.Marshal(msg.Meta)
		if err != nil {
			return err
		}
		metadata = string(raw)
	}
	data := map[string]interface{}{
		"session_id": msg.SessionID,
		"role":       msg.Role,
		"content":    msg.Content,
		"metadata":   metadata,
		"ctime":      msg.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("chat_messages", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// ListRecent returns the newest messages of a session in
// chronological order, oldest first.
func (r *MessageRepo) ListRecent(ctx context.Context, sessionID string, limit int) ([]*model.ChatMessage, error) {
	where := map[string]interface{}{
		"session_id": sessionID,
		"_orderby":   "id desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{0, uint(limit)}
	}
	sqlStr, args, err := builder.BuildSelect("chat_messages", where, []string{"id", "session_id", "role", "content", "metadata", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var messages []*model.ChatMessage
	for rows.Next() {
		var msg model.ChatMessage
		var metadata string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &metadata, &msg.Ctime); err != nil {
			return nil, err
		}
		if metadata != "" {
			var meta model.MessageMeta
			if err := json.Unmarshal([]byte(metadata), &meta); err == nil {
				msg.Meta = &meta
			}
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	where := map[string]interface{}{"session_id": sessionID}
	sqlStr, args, err := builder.BuildDelete("chat_messages", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
