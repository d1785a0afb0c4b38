package vecstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"docqa/internal/ai"
)

const (
	MetricCosine = "cosine"

	taskRetrievalQuery    = "RETRIEVAL_QUERY"
	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// Passage is one retrieved chunk of document text. Relevance rank is
// implicit in list order.
type Passage struct {
	Content string
	Source  string
}

// Store is a pgvector-backed vector index. Collections share one
// table keyed by collection name; similarity uses cosine distance.
type Store struct {
	db       *sql.DB
	embedder ai.IEmbedder
}

func New(db *sql.DB, embedder ai.IEmbedder) *Store {
	return &Store{db: db, embedder: embedder}
}

func (s *Store) EnsureCollection(ctx context.Context, name string, dim int, metric string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if metric == "" {
		metric = MetricCosine
	}
	if metric != MetricCosine {
		return fmt.Errorf("unsupported metric: %s", metric)
	}
	const query = `
		INSERT INTO vector_collections (name, dim, metric, ctime)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, name, dim, metric, time.Now().Unix())
	return err
}

// EnsurePayloadIndex makes lookups on the given payload field cheap.
// Only the source field is indexable; the index is shared across
// collections and creation is idempotent.
func (s *Store) EnsurePayloadIndex(ctx context.Context, collection, field string) error {
	if field != "source" {
		return fmt.Errorf("unsupported payload field: %s", field)
	}
	_ = collection
	const query = `CREATE INDEX IF NOT EXISTS idx_vector_chunks_source ON vector_chunks (collection, source)`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *Store) Search(ctx context.Context, collection, query string, scope *Scope, k int) ([]Passage, error) {
	if k <= 0 {
		return nil, nil
	}
	queryEmb, err := s.embedder.Embed(ctx, query, taskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed search query: %w", err)
	}
	sqlStr := `
		SELECT content, source
		FROM vector_chunks
		WHERE collection = $1
	`
	args := []interface{}{collection}
	clause, scopeArgs := scope.whereClause(len(args) + 1)
	sqlStr += clause
	args = append(args, scopeArgs...)
	sqlStr += fmt.Sprintf(" ORDER BY embedding <=> $%d LIMIT $%d", len(args)+1, len(args)+2)
	args = append(args, pgvector.NewVector(queryEmb), k)

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var passages []Passage
	for rows.Next() {
		var p Passage
		if err := rows.Scan(&p.Content, &p.Source); err != nil {
			return nil, err
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Debug("vector search done",
		zap.String("collection", collection),
		zap.Int("k", k),
		zap.Int("hits", len(passages)),
	)
	return passages, nil
}

func (s *Store) Upsert(ctx context.Context, collection string, passages []Passage) error {
	if len(passages) == 0 {
		return nil
	}
	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Content)
	}
	embeddings, err := s.embedder.EmbedMany(ctx, texts, taskRetrievalDocument)
	if err != nil {
		return fmt.Errorf("embed passages: %w", err)
	}
	const query = `
		INSERT INTO vector_chunks (collection, source, content, embedding, ctime)
		VALUES ($1, $2, $3, $4, $5)
	`
	now := time.Now().Unix()
	for i, p := range passages {
		if _, err := s.db.ExecContext(ctx, query, collection, p.Source, p.Content, pgvector.NewVector(embeddings[i]), now); err != nil {
			return err
		}
	}
	logutil.GetLogger(ctx).Info("passages upserted",
		zap.String("collection", collection),
		zap.Int("count", len(passages)),
	)
	return nil
}

func (s *Store) DeleteWhere(ctx context.Context, collection, field, value string) error {
	if field != "source" {
		return fmt.Errorf("unsupported payload field: %s", field)
	}
	const query = `DELETE FROM vector_chunks WHERE collection = $1 AND source = $2`
	res, err := s.db.ExecContext(ctx, query, collection, value)
	if err != nil {
		return err
	}
	deleted, _ := res.RowsAffected()
	logutil.GetLogger(ctx).Info("passages deleted",
		zap.String("collection", collection),
		zap.String("source", value),
		zap.Int64("count", deleted),
	)
	return nil
}
