package srs

import (
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// computeInitialDueDate determines the first review date for a card
// created on the given day: the creation date plus the stage-0 interval.
func computeInitialDueDate(createdAt time.Time, params *Params) time.Time {
	return domain.DateOf(createdAt).AddDate(0, 0, params.Intervals[0])
}

// advanceStage computes the stage a card moves to after a completed
// review. The stage increases by exactly one and is capped at the
// graduation stage; advancing a graduated card leaves it graduated.
func advanceStage(currentStage int, params *Params) int {
	next := currentStage + 1
	if cap := params.GraduationStage(); next > cap {
		next = cap
	}
	return next
}

// dueDateForStage computes the next review date for a card that reached
// the given stage on the given day. Stages inside the table schedule by
// their interval entry; the graduation stage schedules by the graduated
// interval, so graduated cards keep receding by a year per review
// rather than leaving the schedule.
func dueDateForStage(stage int, today time.Time, params *Params) time.Time {
	day := domain.DateOf(today)
	if stage < params.GraduationStage() {
		return day.AddDate(0, 0, params.Intervals[stage])
	}
	return day.AddDate(0, 0, params.GraduatedIntervalDays)
}

// advanceCard returns a copy of the card moved to its next stage with a
// recomputed next review date. The input card is not mutated.
func advanceCard(card *domain.KnowledgeCard, today time.Time, params *Params) *domain.KnowledgeCard {
	updated := *card
	updated.ReviewStage = advanceStage(card.ReviewStage, params)
	updated.NextReviewDate = dueDateForStage(updated.ReviewStage, today, params)
	return &updated
}
