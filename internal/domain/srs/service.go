package srs

import (
	"errors"
	"math/rand"
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// Common errors
var (
	ErrNilCard     = errors.New("card cannot be nil")
	ErrEmptyParams = errors.New("params must contain at least one interval")
)

// Candidate is a topic offered by a topic source that may not have been
// learned yet.
type Candidate struct {
	Topic     string `json:"topic"`
	Category  string `json:"category"`
	Rationale string `json:"why,omitempty"`
}

// Service defines the scheduling operations of the review engine. All
// methods are pure decision logic: no I/O, no clock access, callers
// pass "today" explicitly.
type Service interface {
	// ComputeInitialDueDate returns the first review date for a card
	// created on the given day.
	ComputeInitialDueDate(createdAt time.Time) time.Time

	// Advance returns a copy of the card moved to its next review stage
	// with the next review date recomputed from today. Advancing a
	// graduated card keeps the stage at the cap and re-extends the due
	// date by the graduated interval.
	Advance(card *domain.KnowledgeCard, today time.Time) (*domain.KnowledgeCard, error)

	// FilterUnlearned returns the candidates whose topics are not in
	// known, preserving the relative order of candidates.
	FilterUnlearned(candidates []Candidate, known map[string]struct{}) []Candidate

	// PickOne selects a single candidate. It reports false on empty
	// input instead of erroring.
	PickOne(candidates []Candidate) (Candidate, bool)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
	rng    *rand.Rand
}

// NewDefaultService creates a scheduling service with the default
// interval table.
func NewDefaultService() Service {
	svc, err := NewServiceWithParams(NewDefaultParams())
	if err != nil {
		// The default params are a non-empty compile-time table.
		// ALLOW-PANIC: invariant of NewDefaultParams
		panic(err)
	}
	return svc
}

// NewServiceWithParams creates a scheduling service with a custom
// interval table. Returns an error if the table is empty.
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil || len(params.Intervals) == 0 {
		return nil, ErrEmptyParams
	}
	return &defaultService{
		params: params,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (s *defaultService) ComputeInitialDueDate(createdAt time.Time) time.Time {
	return computeInitialDueDate(createdAt, s.params)
}

func (s *defaultService) Advance(
	card *domain.KnowledgeCard,
	today time.Time,
) (*domain.KnowledgeCard, error) {
	if card == nil {
		return nil, ErrNilCard
	}
	return advanceCard(card, today, s.params), nil
}

func (s *defaultService) FilterUnlearned(
	candidates []Candidate,
	known map[string]struct{},
) []Candidate {
	unlearned := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, seen := known[c.Topic]; !seen {
			unlearned = append(unlearned, c)
		}
	}
	return unlearned
}

func (s *defaultService) PickOne(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	return candidates[s.rng.Intn(len(candidates))], true
}
