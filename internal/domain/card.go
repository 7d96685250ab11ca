package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardTopicEmpty is returned when a card's topic is empty.
	ErrCardTopicEmpty = errors.New("card topic cannot be empty")

	// ErrCardCategoryEmpty is returned when a card's category is empty.
	ErrCardCategoryEmpty = errors.New("card category cannot be empty")

	// ErrCardStageNegative is returned when a card's review stage is negative.
	ErrCardStageNegative = errors.New("card review stage cannot be negative")

	// ErrCardReviewBeforeCreation is returned when a card's next review date
	// precedes its creation date.
	ErrCardReviewBeforeCreation = errors.New("next review date cannot precede creation date")
)

// KnowledgeCard represents one learned topic and its position in the
// review schedule. A card is created the first time a topic is learned
// and afterwards only mutated by advancing its review stage; the topic
// string is unique across all cards.
type KnowledgeCard struct {
	ID             uuid.UUID `json:"id"`
	Topic          string    `json:"topic"`
	Category       Category  `json:"category"`
	Summary        string    `json:"summary"`
	CreatedAt      time.Time `json:"created_at"`
	NextReviewDate time.Time `json:"next_review_date"`
	ReviewStage    int       `json:"review_stage"`
}

// NewKnowledgeCard creates a new KnowledgeCard for the given topic.
// It generates a new UUID for the card ID, initializes the review stage
// to 0, and normalizes both dates to UTC midnight. The next review date
// is scheduling arithmetic and must be computed by the caller (see
// srs.ComputeInitialDueDate) so that the interval table stays the single
// source of truth for due dates.
// Returns an error if validation fails.
func NewKnowledgeCard(
	topic string,
	category Category,
	summary string,
	createdAt time.Time,
	nextReviewDate time.Time,
) (*KnowledgeCard, error) {
	card := &KnowledgeCard{
		ID:             uuid.New(),
		Topic:          topic,
		Category:       category,
		Summary:        summary,
		CreatedAt:      DateOf(createdAt),
		NextReviewDate: DateOf(nextReviewDate),
		ReviewStage:    0,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the KnowledgeCard has valid data.
// Returns an error if any field fails validation.
func (c *KnowledgeCard) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.Topic == "" {
		return ErrCardTopicEmpty
	}

	if c.Category == "" {
		return ErrCardCategoryEmpty
	}

	if c.ReviewStage < 0 {
		return ErrCardStageNegative
	}

	if c.NextReviewDate.Before(c.CreatedAt) {
		return ErrCardReviewBeforeCreation
	}

	return nil
}

// IsDue reports whether the card is due for review on or before asOf.
func (c *KnowledgeCard) IsDue(asOf time.Time) bool {
	return !c.NextReviewDate.After(DateOf(asOf))
}

// DateOf truncates a timestamp to its calendar date: midnight UTC.
// Card dates carry calendar-date semantics, so every date entering the
// domain passes through this.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
