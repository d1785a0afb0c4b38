package ingest

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "docqa/internal/pkg/errors"
	"docqa/internal/vecstore"
)

// Ingestor turns an uploaded document into indexed passages.
type Ingestor struct {
	splitter *Splitter
	store    *vecstore.Store
}

func NewIngestor(splitter *Splitter, store *vecstore.Store) *Ingestor {
	return &Ingestor{splitter: splitter, store: store}
}

// Ingest extracts, chunks and indexes one document. It returns the
// number of passages written to the collection.
func (ig *Ingestor) Ingest(ctx context.Context, collection, filename string, data []byte) (int, error) {
	content, err := ExtractText(filename, data)
	if err != nil {
		return 0, err
	}
	return ig.IngestText(ctx, collection, filename, content)
}

// IngestText chunks and indexes already extracted text.
func (ig *Ingestor) IngestText(ctx context.Context, collection, filename, content string) (int, error) {
	chunks := ig.splitter.Split(content)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: document has no extractable text", appErr.ErrInvalid)
	}
	passages := make([]vecstore.Passage, 0, len(chunks))
	for _, chunk := range chunks {
		passages = append(passages, vecstore.Passage{
			Content: chunk,
			Source:  filename,
		})
	}
	if err := ig.store.Upsert(ctx, collection, passages); err != nil {
		return 0, err
	}
	logutil.GetLogger(ctx).Info("document ingested",
		zap.String("collection", collection),
		zap.String("filename", filename),
		zap.Int("chunks", len(passages)),
	)
	return len(passages), nil
}
