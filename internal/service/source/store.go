package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"trendcloud/internal/domain/hashtag"
)

// DocumentStore defines storage for raw source documents
type DocumentStore interface {
	SaveDocument(ctx context.Context, name string, body []byte) (string, error)
	LatestDocuments(ctx context.Context) ([]hashtag.StoredDocument, error)
}

// StoreSource loads the latest document of every name from a DocumentStore
type StoreSource struct {
	store DocumentStore
	log   *zap.Logger
}

// NewStoreSource creates a new store-backed source
func NewStoreSource(store DocumentStore, log *zap.Logger) *StoreSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &StoreSource{
		store: store,
		log:   log,
	}
}

// Name returns the loader name
func (s *StoreSource) Name() string {
	return "postgres"
}

// Load returns the decoded latest documents
func (s *StoreSource) Load(ctx context.Context) ([]hashtag.Document, error) {
	stored, err := s.store.LatestDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading stored documents: %w", err)
	}

	docs := make([]hashtag.Document, 0, len(stored))
	for _, d := range stored {
		docs = append(docs, decode(d.Name, d.Body, s.log))
	}
	return docs, nil
}
