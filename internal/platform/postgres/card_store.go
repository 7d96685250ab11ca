package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

// maxAdvanceRetries bounds the optimistic-concurrency retry loop in
// AdvanceStage. Concurrent advances on the same card are not expected
// in normal operation, so one retry is nearly always enough.
const maxAdvanceRetries = 3

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend. Topic uniqueness
// is enforced by the UNIQUE constraint on the topic column; due-date
// queries are served by the next_review_date index.
type PostgresCardStore struct {
	db        store.DBTX
	scheduler srs.Service
	logger    *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller, and the
// scheduling service used to recompute due dates on stage advancement.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, scheduler srs.Service, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:        db,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:        tx,
		scheduler: s.scheduler,
		logger:    s.logger,
	}
}

// CreateCard implements store.CardStore.CreateCard
// It saves a new card to the database, handling domain validation.
// Returns store.ErrTopicExists if a card with the same topic already
// exists; the existing card is left unchanged.
func (s *PostgresCardStore) CreateCard(ctx context.Context, card *domain.KnowledgeCard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("topic", card.Topic))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO knowledge_cards (id, topic, category, summary, created_at, next_review_date, review_stage)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.Topic,
		string(card.Category),
		card.Summary,
		card.CreatedAt,
		card.NextReviewDate,
		card.ReviewStage,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("duplicate topic during card creation",
				slog.String("topic", card.Topic))
			return fmt.Errorf("%w: %s", store.ErrTopicExists, card.Topic)
		}

		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()),
			slog.String("topic", card.Topic))
		return MapError(err)
	}

	log.Info("card created successfully",
		slog.String("card_id", card.ID.String()),
		slog.String("topic", card.Topic),
		slog.String("next_review_date", card.NextReviewDate.Format(time.DateOnly)))
	return nil
}

// GetCardByTopic implements store.CardStore.GetCardByTopic
// Returns store.ErrCardNotFound if no card exists for the topic.
func (s *PostgresCardStore) GetCardByTopic(ctx context.Context, topic string) (*domain.KnowledgeCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, topic, category, summary, created_at, next_review_date, review_stage
		FROM knowledge_cards
		WHERE topic = $1
	`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, topic))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found by topic", slog.String("topic", topic))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by topic",
			slog.String("error", err.Error()),
			slog.String("topic", topic))
		return nil, MapError(err)
	}

	return card, nil
}

// GetDueCards implements store.CardStore.GetDueCards
// It returns every card due on or before asOf, earliest overdue first.
// Ties break by creation date and then ID so the ordering is stable.
func (s *PostgresCardStore) GetDueCards(ctx context.Context, asOf time.Time) ([]*domain.KnowledgeCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, topic, category, summary, created_at, next_review_date, review_stage
		FROM knowledge_cards
		WHERE next_review_date <= $1
		ORDER BY next_review_date ASC, created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, domain.DateOf(asOf))
	if err != nil {
		log.Error("failed to query due cards",
			slog.String("error", err.Error()),
			slog.String("as_of", asOf.Format(time.DateOnly)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards, err := collectCards(rows)
	if err != nil {
		log.Error("failed to scan due cards", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("due cards retrieved",
		slog.Int("count", len(cards)),
		slog.String("as_of", asOf.Format(time.DateOnly)))
	return cards, nil
}

// GetKnownTopics implements store.CardStore.GetKnownTopics
func (s *PostgresCardStore) GetKnownTopics(ctx context.Context) (map[string]struct{}, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT topic FROM knowledge_cards`)
	if err != nil {
		log.Error("failed to query known topics", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	known := make(map[string]struct{})
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, MapError(err)
		}
		known[topic] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return known, nil
}

// AdvanceStage implements store.CardStore.AdvanceStage
// It reads the card, computes the next stage and due date through the
// scheduling service, and persists both. The update is guarded by the
// stage the card was read at, so a concurrent advance on the same card
// cannot lose an update; on a guard miss the card is re-read and the
// advance retried.
// Returns store.ErrCardNotFound if the ID is unknown.
func (s *PostgresCardStore) AdvanceStage(
	ctx context.Context,
	id uuid.UUID,
	today time.Time,
) (*domain.KnowledgeCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for attempt := 0; attempt < maxAdvanceRetries; attempt++ {
		card, err := s.getByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				log.Debug("card not found for stage advance",
					slog.String("card_id", id.String()))
				return nil, store.ErrCardNotFound
			}
			log.Error("failed to read card for stage advance",
				slog.String("error", err.Error()),
				slog.String("card_id", id.String()))
			return nil, MapError(err)
		}

		updated, err := s.scheduler.Advance(card, today)
		if err != nil {
			return nil, err
		}

		query := `
			UPDATE knowledge_cards
			SET review_stage = $1, next_review_date = $2
			WHERE id = $3 AND review_stage = $4
		`
		result, err := s.db.ExecContext(
			ctx,
			query,
			updated.ReviewStage,
			updated.NextReviewDate,
			id,
			card.ReviewStage,
		)
		if err != nil {
			log.Error("failed to advance card stage",
				slog.String("error", err.Error()),
				slog.String("card_id", id.String()))
			return nil, MapError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, MapError(err)
		}

		if rowsAffected == 1 {
			log.Info("card stage advanced",
				slog.String("card_id", id.String()),
				slog.String("topic", updated.Topic),
				slog.Int("review_stage", updated.ReviewStage),
				slog.String("next_review_date", updated.NextReviewDate.Format(time.DateOnly)))
			return updated, nil
		}

		// Guard miss: either the card vanished or a concurrent advance
		// changed the stage. The next iteration distinguishes the two.
		log.Warn("stage guard miss during advance, retrying",
			slog.String("card_id", id.String()),
			slog.Int("attempt", attempt+1))
	}

	return nil, fmt.Errorf("%w: advance contention on card %s", store.ErrTransactionFailed, id)
}

// GetAllCards implements store.CardStore.GetAllCards
func (s *PostgresCardStore) GetAllCards(ctx context.Context) ([]*domain.KnowledgeCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, topic, category, summary, created_at, next_review_date, review_stage
		FROM knowledge_cards
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query all cards", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards, err := collectCards(rows)
	if err != nil {
		log.Error("failed to scan cards", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return cards, nil
}

func (s *PostgresCardStore) getByID(ctx context.Context, id uuid.UUID) (*domain.KnowledgeCard, error) {
	query := `
		SELECT id, topic, category, summary, created_at, next_review_date, review_stage
		FROM knowledge_cards
		WHERE id = $1
	`
	return scanCard(s.db.QueryRowContext(ctx, query, id))
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.KnowledgeCard, error) {
	var card domain.KnowledgeCard
	var category string

	err := row.Scan(
		&card.ID,
		&card.Topic,
		&category,
		&card.Summary,
		&card.CreatedAt,
		&card.NextReviewDate,
		&card.ReviewStage,
	)
	if err != nil {
		return nil, err
	}

	card.Category = domain.Category(category)
	// DATE columns scan with the session time zone; renormalize to the
	// domain's UTC-midnight convention.
	card.CreatedAt = domain.DateOf(card.CreatedAt)
	card.NextReviewDate = domain.DateOf(card.NextReviewDate)
	return &card, nil
}

func collectCards(rows *sql.Rows) ([]*domain.KnowledgeCard, error) {
	var cards []*domain.KnowledgeCard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}
