// internal/domain/hashtag/service.go

package hashtag

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrNotFound   = errors.New("not found")
	ErrNoSnapshot = errors.New("no snapshot available")
)

// SourceLoader fetches raw hashtag documents from one origin
type SourceLoader interface {
	// Name identifies the loader in logs and reports
	Name() string

	// Load returns every document the origin currently holds
	Load(ctx context.Context) ([]Document, error)
}

// Service defines the word cloud operations exposed to transports
type Service interface {
	// Start warms the snapshot and begins periodic refreshes
	Start(ctx context.Context) error

	// Stop gracefully stops periodic refreshes
	Stop(ctx context.Context) error

	// Refresh reloads all sources and aggregates a new snapshot
	Refresh(ctx context.Context) (*Snapshot, error)

	// Snapshot returns the current snapshot
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Query filters and sorts the current snapshot
	Query(ctx context.Context, q Query) ([]Entry, error)

	// Entry returns one entry of the current snapshot by text
	Entry(ctx context.Context, text string) (*Entry, error)

	// Cloud lays out one zero-based page of the filtered snapshot
	Cloud(ctx context.Context, q Query, canvas Canvas, page int) (*Page, error)
}

// Page is one laid-out page of a word cloud
type Page struct {
	Index    int               `json:"index"`
	Total    int               `json:"total"`
	Canvas   Canvas            `json:"canvas"`
	Entries  []PositionedEntry `json:"entries"`
	Placed   int               `json:"placed"`
	Fallback int               `json:"fallback"`
}
