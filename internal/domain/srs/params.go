package srs

// Params defines the scheduling data for the review engine: an ordered
// table of days-until-next-review per stage, plus the interval applied
// once a card has exhausted the table ("graduated"). The table is plain
// data so it can be tuned without touching the scheduling logic.
type Params struct {
	// Intervals holds days until the next review for stage 0..K-1.
	// A card at stage K (one past the end) is graduated.
	Intervals []int

	// GraduatedIntervalDays is the interval applied to graduated cards.
	// It must be much larger than the last table entry.
	GraduatedIntervalDays int
}

// NewDefaultParams returns the standard Ebbinghaus-style schedule:
// reviews at 1, 2, 4, 7, 15, 30 and 60 days, then yearly once graduated.
func NewDefaultParams() *Params {
	return &Params{
		Intervals:             []int{1, 2, 4, 7, 15, 30, 60},
		GraduatedIntervalDays: 365,
	}
}

// GraduationStage returns the stage index at which a card is graduated,
// which is one past the last table entry.
func (p *Params) GraduationStage() int {
	return len(p.Intervals)
}
