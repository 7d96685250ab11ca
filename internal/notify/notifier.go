// Package notify defines the boundary interface for delivering the
// daily digest to the user. The scheduling core treats delivery as an
// opaque, fallible collaborator; rendering and transport mechanics live
// in the implementations under internal/platform.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// ErrDeliveryFailed is returned when a digest could not be delivered.
var ErrDeliveryFailed = errors.New("digest delivery failed")

// NewItem is the newly learned topic section of a digest.
type NewItem struct {
	Topic    string
	Category domain.Category
	Body     string
}

// ReviewItem is one due-card review section of a digest.
type ReviewItem struct {
	Topic    string
	Category domain.Category
	Stage    int
	Prompt   string
}

// Stats summarizes learning progress for the digest footer.
type Stats struct {
	LearnedCount int
	DueCount     int
}

// Digest is everything delivered for one daily cycle. NewItem is nil
// when no new topic was learned; Reviews may be empty.
type Digest struct {
	Date    time.Time
	NewItem *NewItem
	Reviews []ReviewItem
	Stats   Stats
}

// Notifier delivers a daily digest. A non-nil error means nothing was
// delivered; partial delivery is not part of the contract.
type Notifier interface {
	Deliver(ctx context.Context, digest *Digest) error
}
