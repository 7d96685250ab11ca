package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/recall-api/internal/domain"
)

func TestNewKnowledgeCard(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	due := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("valid card", func(t *testing.T) {
		t.Parallel()
		card, err := domain.NewKnowledgeCard(
			"attention mechanisms",
			domain.CategoryFoundations,
			"How attention weights tokens against each other.",
			created,
			due,
		)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, card.ID)
		assert.Equal(t, "attention mechanisms", card.Topic)
		assert.Equal(t, domain.CategoryFoundations, card.Category)
		assert.Equal(t, 0, card.ReviewStage)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), card.CreatedAt,
			"creation timestamp must be truncated to the calendar date")
		assert.Equal(t, due, card.NextReviewDate)
	})

	t.Run("empty topic", func(t *testing.T) {
		t.Parallel()
		_, err := domain.NewKnowledgeCard("", domain.CategoryGeneral, "summary", created, due)
		assert.ErrorIs(t, err, domain.ErrCardTopicEmpty)
	})

	t.Run("empty category", func(t *testing.T) {
		t.Parallel()
		_, err := domain.NewKnowledgeCard("topic", "", "summary", created, due)
		assert.ErrorIs(t, err, domain.ErrCardCategoryEmpty)
	})

	t.Run("review before creation", func(t *testing.T) {
		t.Parallel()
		_, err := domain.NewKnowledgeCard(
			"topic",
			domain.CategoryGeneral,
			"summary",
			created,
			created.AddDate(0, 0, -1),
		)
		assert.ErrorIs(t, err, domain.ErrCardReviewBeforeCreation)
	})
}

func TestKnowledgeCardValidate(t *testing.T) {
	t.Parallel()

	base := domain.KnowledgeCard{
		ID:             uuid.New(),
		Topic:          "dropout",
		Category:       domain.CategoryTraining,
		CreatedAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NextReviewDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	testCases := []struct {
		name     string
		mutate   func(c *domain.KnowledgeCard)
		expected error
	}{
		{
			name:     "valid",
			mutate:   func(c *domain.KnowledgeCard) {},
			expected: nil,
		},
		{
			name:     "nil ID",
			mutate:   func(c *domain.KnowledgeCard) { c.ID = uuid.Nil },
			expected: domain.ErrCardIDEmpty,
		},
		{
			name:     "negative stage",
			mutate:   func(c *domain.KnowledgeCard) { c.ReviewStage = -1 },
			expected: domain.ErrCardStageNegative,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card := base
			tc.mutate(&card)

			err := card.Validate()
			if tc.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.expected)
			}
		})
	}
}

func TestKnowledgeCardIsDue(t *testing.T) {
	t.Parallel()

	card := domain.KnowledgeCard{
		NextReviewDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	testCases := []struct {
		name string
		asOf time.Time
		due  bool
	}{
		{name: "day before", asOf: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC), due: false},
		{name: "on the day", asOf: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), due: true},
		{name: "later that day", asOf: time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), due: true},
		{name: "day after", asOf: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), due: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.due, card.IsDue(tc.asOf))
		})
	}
}

func TestDateOf(t *testing.T) {
	t.Parallel()

	est := time.FixedZone("EST", -5*3600)

	testCases := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "already midnight UTC",
			input:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "mid-day UTC",
			input:    time.Date(2024, 1, 1, 17, 45, 12, 999, time.UTC),
			expected: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "non-UTC zone crossing a date line",
			input:    time.Date(2024, 1, 1, 22, 0, 0, 0, est),
			expected: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, domain.DateOf(tc.input))
		})
	}
}

func TestCategoryInfo(t *testing.T) {
	t.Parallel()

	t.Run("known category", func(t *testing.T) {
		t.Parallel()
		info := domain.CategoryFoundations.Info()
		assert.Equal(t, "🟢", info.Tag)
		assert.True(t, domain.CategoryFoundations.IsKnown())
	})

	t.Run("unknown category falls back to General display", func(t *testing.T) {
		t.Parallel()
		unknown := domain.Category("Quantum Basket Weaving")
		assert.False(t, unknown.IsKnown())
		assert.Equal(t, domain.CategoryGeneral.Info(), unknown.Info())
	})
}
