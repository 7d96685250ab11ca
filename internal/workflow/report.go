package workflow

import (
	"time"

	"github.com/phrazzld/recall-api/internal/notify"
)

// Status is the overall outcome of one daily cycle.
type Status string

// Possible cycle status values
const (
	// StatusCompleted means every intended item was generated,
	// delivered and persisted.
	StatusCompleted Status = "completed"

	// StatusCompletedWithErrors means the cycle ran to the end but some
	// items were skipped; skipped reviews stay due for the next run.
	StatusCompletedWithErrors Status = "completed_with_errors"

	// StatusFailed means the cycle aborted. State committed before the
	// failure is retained; there is no cross-step rollback.
	StatusFailed Status = "failed"
)

// RunReport is the run log of one daily cycle. It is always returned,
// also alongside a non-nil error, so callers can see how far the cycle
// got and which items were skipped.
type RunReport struct {
	Date   time.Time
	Status Status

	// NewTopic is the selected new topic, empty if none was available.
	NewTopic string

	// NewCardCreated reports whether a card was persisted for NewTopic.
	NewCardCreated bool

	ReviewsDue       int
	ReviewsGenerated int
	ReviewsAdvanced  int

	// SkippedTopics lists the topics of due cards that were excluded
	// from delivery and persistence because their review generation or
	// stage advancement failed. They remain due.
	SkippedTopics []string

	// Delivered reports whether the digest was handed to the notifier
	// successfully. Always false in dry-run and skip-delivery modes.
	Delivered bool

	// Digest is the assembled digest content, also when it was not
	// delivered. Dry runs use it to write a local preview.
	Digest *notify.Digest

	// Errors collects the per-item failures that did not abort the cycle.
	Errors []error
}

func (r *RunReport) recordError(topic string, err error) {
	if topic != "" {
		r.SkippedTopics = append(r.SkippedTopics, topic)
	}
	r.Errors = append(r.Errors, err)
}

// finalize derives the terminal status from the collected errors.
func (r *RunReport) finalize() {
	if len(r.Errors) > 0 {
		r.Status = StatusCompletedWithErrors
		return
	}
	r.Status = StatusCompleted
}
