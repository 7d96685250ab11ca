package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/generation"
)

// recentTopicsInPrompt caps how much learning history the topic prompt
// carries; older topics add tokens without improving dedup.
const recentTopicsInPrompt = 50

// HistoryLister is the slice of the card store the topic source needs:
// the learning history it feeds into the prompt, most recently created
// first so the recency cap keeps the newest topics.
type HistoryLister interface {
	GetAllCards(ctx context.Context) ([]*domain.KnowledgeCard, error)
}

// DynamicTopicSource implements generation.TopicSource by asking the
// Gemini API to propose the next topic, given the learning history.
// This is the personalized alternative to the static file source.
type DynamicTopicSource struct {
	logger    *slog.Logger
	generator *GeminiGenerator
	history   HistoryLister
	template  *template.Template

	// now supplies the current date for the prompt; injectable for tests.
	now func() time.Time
}

// NewDynamicTopicSource creates a topic source backed by the given
// generator's Gemini client and the card store's learning history.
func NewDynamicTopicSource(
	logger *slog.Logger,
	generator *GeminiGenerator,
	history HistoryLister,
) (*DynamicTopicSource, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", generation.ErrInvalidConfig)
	}
	if generator == nil {
		return nil, fmt.Errorf("%w: generator cannot be nil", generation.ErrInvalidConfig)
	}
	if history == nil {
		return nil, fmt.Errorf("%w: history lister cannot be nil", generation.ErrInvalidConfig)
	}

	tmpl, err := template.New("topic").Parse(topicPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse topic prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	return &DynamicTopicSource{
		logger:    logger.With(slog.String("component", "dynamic_topic_source")),
		generator: generator,
		history:   history,
		template:  tmpl,
		now:       time.Now,
	}, nil
}

// Ensure DynamicTopicSource implements generation.TopicSource
var _ generation.TopicSource = (*DynamicTopicSource)(nil)

// topicPromptData feeds the topic prompt template.
type topicPromptData struct {
	LearnedTopics []string
	LearnedCount  int
	Date          string
}

// ListCandidates implements generation.TopicSource.ListCandidates
// It returns a single LLM-proposed candidate. The proposal is generated
// with the learning history in the prompt, but the caller still
// deduplicates it against known topics like any other candidate.
func (s *DynamicTopicSource) ListCandidates(ctx context.Context) ([]srs.Candidate, error) {
	cards, err := s.history.GetAllCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load learning history: %w", err)
	}

	data := topicPromptData{
		LearnedTopics: recentTopics(cards, recentTopicsInPrompt),
		LearnedCount:  len(cards),
		Date:          s.now().UTC().Format(time.DateOnly),
	}

	var promptBuffer bytes.Buffer
	if err := s.template.Execute(&promptBuffer, data); err != nil {
		return nil, fmt.Errorf("failed to execute topic prompt template: %w", err)
	}

	// Topic proposals want diversity, so run hotter than articles.
	text, err := s.generator.callWithRetry(ctx, promptBuffer.String(), 0.9)
	if err != nil {
		return nil, err
	}

	var candidate srs.Candidate
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &candidate); err != nil {
		return nil, fmt.Errorf("%w: failed to parse topic response: %v",
			generation.ErrInvalidResponse, err)
	}

	if candidate.Topic == "" || candidate.Category == "" {
		return nil, fmt.Errorf("%w: topic response missing required fields",
			generation.ErrInvalidResponse)
	}

	s.logger.InfoContext(ctx, "dynamic topic proposed",
		"topic", candidate.Topic,
		"category", candidate.Category)

	return []srs.Candidate{candidate}, nil
}

// recentTopics takes up to limit topic names from cards, which arrive
// most recently created first, preserving that order.
func recentTopics(cards []*domain.KnowledgeCard, limit int) []string {
	if limit > len(cards) {
		limit = len(cards)
	}
	topics := make([]string, 0, limit)
	for _, card := range cards[:limit] {
		topics = append(topics, card.Topic)
	}
	return topics
}
