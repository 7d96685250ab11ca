package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// CardStore defines the interface for knowledge card persistence.
//
// Only CreateCard and AdvanceStage mutate state; every other method is
// a pure query. Implementations must enforce topic uniqueness at
// insertion time and keep the due-card ordering stable for identical
// inputs, since callers present reviews in that order.
type CardStore interface {
	// CreateCard saves a new card to the store.
	// The card must be valid according to domain validation rules.
	// Returns ErrTopicExists if a card with the same topic already
	// exists; a duplicate insertion never creates a second card.
	CreateCard(ctx context.Context, card *domain.KnowledgeCard) error

	// GetCardByTopic retrieves a card by its topic name.
	// Returns ErrCardNotFound if no card exists for the topic.
	GetCardByTopic(ctx context.Context, topic string) (*domain.KnowledgeCard, error)

	// GetDueCards returns every card whose next review date is on or
	// before asOf, ordered by next review date ascending (earliest
	// overdue first). The ordering is a contract: ties break by
	// creation date, then ID, so identical inputs yield identical
	// output.
	GetDueCards(ctx context.Context, asOf time.Time) ([]*domain.KnowledgeCard, error)

	// GetKnownTopics returns the set of all topics ever inserted,
	// used to deduplicate candidate topic lists.
	GetKnownTopics(ctx context.Context) (map[string]struct{}, error)

	// AdvanceStage moves the card one review stage forward and
	// recomputes its next review date from today, persisting both in a
	// single atomic step. A concurrent advance on the same card must
	// not lose an update.
	// Returns the updated card, or ErrCardNotFound if the ID is unknown.
	AdvanceStage(ctx context.Context, id uuid.UUID, today time.Time) (*domain.KnowledgeCard, error)

	// GetAllCards returns a full snapshot of every card, most recently
	// created first. Used for statistics only.
	GetAllCards(ctx context.Context) ([]*domain.KnowledgeCard, error)

	// WithTx returns a CardStore that runs its operations on the
	// provided transaction. The transaction is created and managed by
	// the caller, typically via store.RunInTransaction.
	WithTx(tx *sql.Tx) CardStore
}
