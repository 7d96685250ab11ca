package main

import (
	"fmt"
	"sort"

	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/workflow"
)

// maxDueShown caps the due list in status output.
const maxDueShown = 5

// printStats renders the status command output.
func printStats(stats *workflow.Stats) {
	fmt.Println()
	fmt.Println("Learning status")
	fmt.Println("===============")
	fmt.Printf("Topics learned: %d\n", stats.LearnedCount)

	if len(stats.ByCategory) > 0 {
		fmt.Println("\nBy category:")
		type catCount struct {
			category domain.Category
			count    int
		}
		counts := make([]catCount, 0, len(stats.ByCategory))
		for cat, n := range stats.ByCategory {
			counts = append(counts, catCount{cat, n})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].count != counts[j].count {
				return counts[i].count > counts[j].count
			}
			return counts[i].category < counts[j].category
		})
		for _, c := range counts {
			fmt.Printf("  %s %s: %d\n", c.category.Info().Tag, c.category, c.count)
		}
	}

	if stats.DueCount == 0 {
		fmt.Println("\nNo reviews due today.")
		fmt.Println()
		return
	}

	fmt.Printf("\nDue for review today: %d\n", stats.DueCount)
	for i, card := range stats.DueToday {
		if i == maxDueShown {
			fmt.Printf("  ... and %d more\n", stats.DueCount-maxDueShown)
			break
		}
		fmt.Printf("  %s %s (stage %d)\n", card.Category.Info().Tag, card.Topic, card.ReviewStage)
	}
	fmt.Println()
}
