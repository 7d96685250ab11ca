package generation

import (
	"context"

	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
)

// Article is the generated content for a newly learned topic.
type Article struct {
	// Body is the full article text, typically markdown.
	Body string

	// Summary is a short recall aid extracted from the body, stored on
	// the card. May be empty if the body carries no summary section.
	Summary string
}

// Generator defines the interface for producing learning content.
// It is the boundary between the scheduling core and external LLM
// services; the core never depends on a concrete provider.
type Generator interface {
	// GenerateArticle creates the full learning content for a new
	// topic, including a short summary for the card.
	GenerateArticle(ctx context.Context, candidate srs.Candidate) (*Article, error)

	// GenerateReviewPrompt creates a review question for a previously
	// learned card. The card's stage may inform the question's depth.
	GenerateReviewPrompt(ctx context.Context, card *domain.KnowledgeCard) (string, error)
}

// TopicSource supplies candidate topics for new learning. A source may
// be static (a file) or dynamic (an LLM asked for the next topic).
type TopicSource interface {
	// ListCandidates returns candidate topics. The candidates are not
	// yet filtered against learned topics; the caller deduplicates.
	// An exhausted source returns an empty slice, not an error.
	ListCandidates(ctx context.Context) ([]srs.Candidate, error)
}
