package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/generation"
	"google.golang.org/genai"
)

// maxSummaryLength bounds the stored recall summary.
const maxSummaryLength = 200

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API to produce learning articles and review prompts.
type GeminiGenerator struct {
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client

	articleTemplate *template.Template
	reviewTemplate  *template.Template

	// maxStage is the graduation stage, shown in review prompts so the
	// model can calibrate question depth.
	maxStage int
}

// NewGeminiGenerator creates a new GeminiGenerator with the provided
// dependencies. Returns an error if the configuration is incomplete or
// the client cannot be created.
func NewGeminiGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
	schedule *srs.Params,
) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	if schedule == nil {
		return nil, fmt.Errorf("%w: schedule params cannot be nil", generation.ErrInvalidConfig)
	}

	articleTemplate, err := template.New("article").Parse(articlePromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse article prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	reviewTemplate, err := template.New("review").Parse(reviewPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse review prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger:          logger.With(slog.String("component", "gemini_generator")),
		config:          cfg,
		client:          client,
		articleTemplate: articleTemplate,
		reviewTemplate:  reviewTemplate,
		maxStage:        schedule.GraduationStage(),
	}, nil
}

// Ensure GeminiGenerator implements generation.Generator
var _ generation.Generator = (*GeminiGenerator)(nil)

// articleResponse is the JSON shape the article prompt asks the model for.
type articleResponse struct {
	Body    string `json:"body"`
	Summary string `json:"summary"`
}

// GenerateArticle implements generation.Generator.GenerateArticle
func (g *GeminiGenerator) GenerateArticle(
	ctx context.Context,
	candidate srs.Candidate,
) (*generation.Article, error) {
	if candidate.Topic == "" {
		return nil, fmt.Errorf("%w: candidate topic is empty", generation.ErrGenerationFailed)
	}

	var promptBuffer bytes.Buffer
	if err := g.articleTemplate.Execute(&promptBuffer, candidate); err != nil {
		return nil, fmt.Errorf("failed to execute article prompt template: %w", err)
	}

	g.logger.DebugContext(ctx, "generating article",
		"topic", candidate.Topic,
		"category", candidate.Category)

	text, err := g.callWithRetry(ctx, promptBuffer.String(), g.config.Temperature)
	if err != nil {
		return nil, err
	}

	var parsed articleResponse
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse article response: %v",
			generation.ErrInvalidResponse, err)
	}

	if parsed.Body == "" {
		return nil, fmt.Errorf("%w: article body is empty", generation.ErrInvalidResponse)
	}

	return &generation.Article{
		Body:    parsed.Body,
		Summary: truncateSummary(parsed.Summary),
	}, nil
}

// reviewPromptData feeds the review prompt template.
type reviewPromptData struct {
	Topic            string
	Category         string
	Summary          string
	Stage            int
	MaxStage         int
	StageDescription string
}

// GenerateReviewPrompt implements generation.Generator.GenerateReviewPrompt
func (g *GeminiGenerator) GenerateReviewPrompt(
	ctx context.Context,
	card *domain.KnowledgeCard,
) (string, error) {
	if card == nil {
		return "", fmt.Errorf("%w: card is nil", generation.ErrGenerationFailed)
	}

	data := reviewPromptData{
		Topic:            card.Topic,
		Category:         string(card.Category),
		Summary:          card.Summary,
		Stage:            card.ReviewStage,
		MaxStage:         g.maxStage,
		StageDescription: stageDescription(card.ReviewStage, g.maxStage),
	}

	var promptBuffer bytes.Buffer
	if err := g.reviewTemplate.Execute(&promptBuffer, data); err != nil {
		return "", fmt.Errorf("failed to execute review prompt template: %w", err)
	}

	g.logger.DebugContext(ctx, "generating review prompt",
		"topic", card.Topic,
		"review_stage", card.ReviewStage)

	// Reviews use a slightly lower temperature than articles: recall
	// questions should stay close to the learned material.
	temperature := g.config.Temperature * 0.8

	text, err := g.callWithRetry(ctx, promptBuffer.String(), temperature)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: review prompt is empty", generation.ErrInvalidResponse)
	}

	return text, nil
}

// stageDescription phrases how long ago the topic was studied, keyed by
// how far the card has moved through the schedule.
func stageDescription(stage, maxStage int) string {
	switch {
	case stage == 0:
		return "yesterday"
	case stage < maxStage/2:
		return "a few days ago"
	case stage < maxStage:
		return "several weeks ago"
	default:
		return "a long time ago and has graduated from regular review"
	}
}

// stripCodeFences removes a markdown code fence wrapper the model
// sometimes adds despite instructions.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimPrefix(trimmed, "json")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func truncateSummary(summary string) string {
	summary = strings.TrimSpace(summary)
	if len(summary) <= maxSummaryLength {
		return summary
	}

	runes := []rune(summary)
	if len(runes) <= maxSummaryLength {
		return summary
	}
	return string(runes[:maxSummaryLength])
}
