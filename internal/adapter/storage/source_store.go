// internal/adapter/storage/source_store.go

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendcloud/internal/domain/hashtag"
)

// SourceStore persists raw hashtag source documents in Postgres.
// Documents are stored verbatim; only the latest body per name is read back.
type SourceStore struct {
	db *pgxpool.Pool
}

// NewSourceStore creates a new source store
func NewSourceStore(db *pgxpool.Pool) *SourceStore {
	return &SourceStore{
		db: db,
	}
}

// EnsureSchema creates the documents table when missing
func (s *SourceStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS hashtag_documents (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL,
			body       JSONB NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS hashtag_documents_name_fetched_idx
			ON hashtag_documents (name, fetched_at DESC);
	`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("error creating hashtag_documents: %w", err)
	}
	return nil
}

// SaveDocument stores a new version of a named document
func (s *SourceStore) SaveDocument(ctx context.Context, name string, body []byte) (string, error) {
	query := `
		INSERT INTO hashtag_documents (id, name, body, fetched_at)
		VALUES ($1, $2, $3, $4)
	`

	id := uuid.New().String()
	_, err := s.db.Exec(ctx, query, id, name, body, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// LatestDocuments returns the newest document of every name, ordered by name
func (s *SourceStore) LatestDocuments(ctx context.Context) ([]hashtag.StoredDocument, error) {
	query := `
		SELECT DISTINCT ON (name)
			id::text, name, body::text, fetched_at
		FROM hashtag_documents
		ORDER BY name, fetched_at DESC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var docs []hashtag.StoredDocument
	for rows.Next() {
		var d hashtag.StoredDocument
		var body string

		if err := rows.Scan(&d.ID, &d.Name, &body, &d.FetchedAt); err != nil {
			return nil, fmt.Errorf("error scanning document: %w", err)
		}

		d.Body = []byte(body)
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// ListDocuments returns document metadata, newest first
func (s *SourceStore) ListDocuments(ctx context.Context, limit int) ([]hashtag.StoredDocument, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id::text, name, fetched_at
		FROM hashtag_documents
		ORDER BY fetched_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var docs []hashtag.StoredDocument
	for rows.Next() {
		var d hashtag.StoredDocument
		if err := rows.Scan(&d.ID, &d.Name, &d.FetchedAt); err != nil {
			return nil, fmt.Errorf("error scanning document: %w", err)
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}
