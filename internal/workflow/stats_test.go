package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/recall-api/internal/domain"
)

func TestCollectStats(t *testing.T) {
	t.Parallel()
	cards := newFakeCardStore(t)

	a := cards.add(t, "attention", 1, mustDay("2024-06-01"))
	a.Category = domain.CategoryFoundations
	b := cards.add(t, "dropout", 2, mustDay("2024-06-03"))
	b.Category = domain.CategoryTraining
	c := cards.add(t, "adam", 0, mustDay("2024-05-28"))
	c.Category = domain.CategoryTraining

	stats, err := CollectStats(context.Background(), cards, mustDay("2024-06-01"))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.LearnedCount)
	assert.Equal(t, 2, stats.DueCount)
	assert.Equal(t, map[domain.Category]int{
		domain.CategoryFoundations: 1,
		domain.CategoryTraining:    2,
	}, stats.ByCategory)

	require.Len(t, stats.DueToday, 2)
	assert.Equal(t, "adam", stats.DueToday[0].Topic)
	assert.Equal(t, "attention", stats.DueToday[1].Topic)
}

func TestCollectStatsEmptyStore(t *testing.T) {
	t.Parallel()
	cards := newFakeCardStore(t)

	stats, err := CollectStats(context.Background(), cards, mustDay("2024-06-01"))
	require.NoError(t, err)
	assert.Zero(t, stats.LearnedCount)
	assert.Zero(t, stats.DueCount)
	assert.Empty(t, stats.ByCategory)
}
