package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

// Stats is a snapshot of learning progress, used by the status command.
type Stats struct {
	LearnedCount int
	DueCount     int
	ByCategory   map[domain.Category]int
	DueToday     []*domain.KnowledgeCard
}

// CollectStats computes a progress snapshot from the card store as of
// the given day.
func CollectStats(ctx context.Context, cards store.CardStore, today time.Time) (*Stats, error) {
	all, err := cards.GetAllCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading cards for stats: %w", err)
	}

	due, err := cards.GetDueCards(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("loading due cards for stats: %w", err)
	}

	stats := &Stats{
		LearnedCount: len(all),
		DueCount:     len(due),
		ByCategory:   make(map[domain.Category]int),
		DueToday:     due,
	}
	for _, card := range all {
		stats.ByCategory[card.Category]++
	}

	return stats, nil
}
