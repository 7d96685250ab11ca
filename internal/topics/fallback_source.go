package topics

import (
	"context"
	"log/slog"

	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/generation"
)

// FallbackSource implements generation.TopicSource by trying a primary
// source and falling back to a secondary when the primary fails or has
// nothing to offer. Used to back dynamic LLM topic selection with the
// static topics file.
type FallbackSource struct {
	logger    *slog.Logger
	primary   generation.TopicSource
	secondary generation.TopicSource
}

// NewFallbackSource creates a topic source chaining primary then
// secondary.
func NewFallbackSource(logger *slog.Logger, primary, secondary generation.TopicSource) *FallbackSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackSource{
		logger:    logger.With(slog.String("component", "fallback_topic_source")),
		primary:   primary,
		secondary: secondary,
	}
}

// Ensure FallbackSource implements generation.TopicSource
var _ generation.TopicSource = (*FallbackSource)(nil)

// ListCandidates implements generation.TopicSource.ListCandidates
func (s *FallbackSource) ListCandidates(ctx context.Context) ([]srs.Candidate, error) {
	candidates, err := s.primary.ListCandidates(ctx)
	if err == nil && len(candidates) > 0 {
		return candidates, nil
	}

	if err != nil {
		s.logger.WarnContext(ctx, "primary topic source failed, falling back",
			"error", err)
	} else {
		s.logger.DebugContext(ctx, "primary topic source empty, falling back")
	}

	return s.secondary.ListCandidates(ctx)
}
