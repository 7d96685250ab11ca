// Package topics provides the static topic source: a JSON file of
// candidate topics, used as the fallback to dynamic LLM topic
// generation.
package topics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/generation"
)

// topicsFile is the on-disk JSON shape:
//
//	{"topics": [{"topic": "...", "category": "...", "why": "..."}]}
type topicsFile struct {
	Topics []srs.Candidate `json:"topics"`
}

// FileSource implements generation.TopicSource from a static JSON file.
// A missing file means no candidates, which is not an error: an
// exhausted or absent list simply yields a cycle with no new topic.
type FileSource struct {
	logger *slog.Logger
	path   string
}

// NewFileSource creates a static topic source reading from path.
func NewFileSource(logger *slog.Logger, path string) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		logger: logger.With(slog.String("component", "file_topic_source")),
		path:   path,
	}
}

// Ensure FileSource implements generation.TopicSource
var _ generation.TopicSource = (*FileSource)(nil)

// ListCandidates implements generation.TopicSource.ListCandidates
func (s *FileSource) ListCandidates(ctx context.Context) ([]srs.Candidate, error) {
	if s.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.DebugContext(ctx, "topics file not found, no static candidates",
				"path", s.path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read topics file %s: %w", s.path, err)
	}

	var file topicsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse topics file %s: %w", s.path, err)
	}

	candidates := make([]srs.Candidate, 0, len(file.Topics))
	for _, c := range file.Topics {
		if c.Topic == "" {
			continue
		}
		candidates = append(candidates, c)
	}

	s.logger.DebugContext(ctx, "static candidates loaded",
		"path", s.path,
		"count", len(candidates))
	return candidates, nil
}
