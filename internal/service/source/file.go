// internal/service/source/file.go

package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"trendcloud/internal/domain/hashtag"
)

// FileSource loads hashtag documents from local JSON files
type FileSource struct {
	patterns []string
	log      *zap.Logger
}

// NewFileSource creates a file source over one or more glob patterns
func NewFileSource(patterns []string, log *zap.Logger) *FileSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileSource{
		patterns: patterns,
		log:      log,
	}
}

// Name returns the loader name
func (s *FileSource) Name() string {
	return "file"
}

// Load reads every file matching the patterns, in sorted path order
func (s *FileSource) Load(ctx context.Context) ([]hashtag.Document, error) {
	paths, err := s.resolve()
	if err != nil {
		return nil, err
	}

	docs := make([]hashtag.Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", path, err)
		}
		docs = append(docs, decode(path, data, s.log))
	}

	return docs, nil
}

func (s *FileSource) resolve() ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range s.patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid source pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// decode parses a document and keeps malformed ones so the aggregator can
// count them as skipped
func decode(name string, data []byte, log *zap.Logger) hashtag.Document {
	doc, err := hashtag.DecodeDocument(name, data)
	if err != nil {
		log.Warn("Malformed hashtag document", zap.String("source", name), zap.Error(err))
	}
	return doc
}
