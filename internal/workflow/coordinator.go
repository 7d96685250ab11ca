// Package workflow orchestrates the daily learning cycle: select one
// new topic, select due reviews, generate content for both, deliver the
// digest, then persist state changes for what was actually produced.
//
// The cycle is a fixed sequence of fallible steps with step-local error
// handling rather than one transaction: delivery cannot participate in
// a storage transaction, so persistence deliberately runs only after a
// successful delivery (commit-after-confirm).
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/generation"
	"github.com/phrazzld/recall-api/internal/notify"
	"github.com/phrazzld/recall-api/internal/store"
)

// Options control a single cycle run.
type Options struct {
	// DryRun generates content but neither delivers nor persists.
	DryRun bool

	// SkipDelivery persists state changes without delivering the
	// digest. Ignored when DryRun is set.
	SkipDelivery bool

	// Today overrides the cycle date; zero means the current day.
	Today time.Time
}

// Coordinator runs the daily cycle against its collaborators. It is
// synchronous and single-threaded: one cycle runs to completion per
// invocation.
type Coordinator struct {
	logger      *slog.Logger
	cards       store.CardStore
	scheduler   srs.Service
	topicSource generation.TopicSource
	generator   generation.Generator
	notifier    notify.Notifier
}

// NewCoordinator wires a Coordinator. The notifier may be nil only if
// every run uses DryRun or SkipDelivery; all other collaborators are
// required.
func NewCoordinator(
	logger *slog.Logger,
	cards store.CardStore,
	scheduler srs.Service,
	topicSource generation.TopicSource,
	generator generation.Generator,
	notifier notify.Notifier,
) (*Coordinator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cards == nil {
		return nil, errors.New("card store cannot be nil")
	}
	if scheduler == nil {
		return nil, errors.New("scheduler cannot be nil")
	}
	if topicSource == nil {
		return nil, errors.New("topic source cannot be nil")
	}
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}

	return &Coordinator{
		logger:      logger.With(slog.String("component", "coordinator")),
		cards:       cards,
		scheduler:   scheduler,
		topicSource: topicSource,
		generator:   generator,
		notifier:    notifier,
	}, nil
}

// generatedReview pairs a due card with its generated review prompt.
type generatedReview struct {
	card   *domain.KnowledgeCard
	prompt string
}

// Run executes one daily cycle and returns its run log. A non-nil
// error means the cycle aborted; the report still describes everything
// that happened up to that point, and state committed before the
// failure is retained.
func (c *Coordinator) Run(ctx context.Context, opts Options) (*RunReport, error) {
	today := opts.Today
	if today.IsZero() {
		today = time.Now()
	}
	today = domain.DateOf(today)

	report := &RunReport{Date: today, Status: StatusFailed}
	log := c.logger.With(slog.String("run_date", today.Format(time.DateOnly)))

	log.InfoContext(ctx, "starting daily cycle",
		"dry_run", opts.DryRun,
		"skip_delivery", opts.SkipDelivery)

	known, err := c.cards.GetKnownTopics(ctx)
	if err != nil {
		return report, fmt.Errorf("loading known topics: %w", err)
	}

	// SELECT_NEW. A failing or exhausted topic source is not an error:
	// the cycle proceeds without a new item.
	candidate, haveCandidate := c.selectNewTopic(ctx, log, known)
	if haveCandidate {
		report.NewTopic = candidate.Topic
	}

	// GENERATE_NEW. In a live run a selected topic whose generation
	// fails aborts the cycle: delivering reviews while silently
	// dropping the announced new topic would desynchronize what the
	// user is told from what gets persisted.
	var article *generation.Article
	if haveCandidate {
		article, err = c.generator.GenerateArticle(ctx, candidate)
		if err != nil {
			if !opts.DryRun {
				report.recordError(candidate.Topic, err)
				return report, fmt.Errorf("generating article for %q: %w", candidate.Topic, err)
			}
			log.WarnContext(ctx, "article generation failed, continuing without new item",
				"topic", candidate.Topic,
				"error", err)
			report.recordError(candidate.Topic, err)
			haveCandidate = false
			report.NewTopic = ""
		} else {
			log.InfoContext(ctx, "article generated",
				"topic", candidate.Topic,
				"summary_length", len(article.Summary))
		}
	} else {
		log.InfoContext(ctx, "no unlearned candidate available, cycle has no new item")
	}

	// SELECT_DUE
	due, err := c.cards.GetDueCards(ctx, today)
	if err != nil {
		return report, fmt.Errorf("loading due cards: %w", err)
	}
	report.ReviewsDue = len(due)
	log.InfoContext(ctx, "due cards selected", "count", len(due))

	// GENERATE_REVIEWS. Failures are isolated per card: a failed card
	// is excluded from delivery and persistence and stays due.
	reviews := c.generateReviews(ctx, log, due, report)
	report.ReviewsGenerated = len(reviews)

	digest := c.buildDigest(today, candidate, haveCandidate, article, reviews, len(known), len(due))
	report.Digest = digest

	// DELIVER. Nothing is persisted when delivery fails.
	switch {
	case opts.DryRun:
		log.InfoContext(ctx, "dry run, skipping delivery and persistence",
			"new_topic", report.NewTopic,
			"reviews", len(reviews))
		report.finalize()
		return report, nil
	case opts.SkipDelivery:
		log.InfoContext(ctx, "delivery skipped by request, persisting anyway")
	default:
		if c.notifier == nil {
			return report, errors.New("notifier is not configured for a delivering run")
		}
		if err := c.notifier.Deliver(ctx, digest); err != nil {
			return report, fmt.Errorf("delivering digest: %w", err)
		}
		report.Delivered = true
		log.InfoContext(ctx, "digest delivered")
	}

	// PERSIST. Attempted item-by-item: a failure on one card does not
	// roll back others already committed.
	c.persist(ctx, log, report, candidate, haveCandidate, article, reviews, today)

	report.finalize()
	log.InfoContext(ctx, "daily cycle finished",
		"status", string(report.Status),
		"new_card_created", report.NewCardCreated,
		"reviews_advanced", report.ReviewsAdvanced,
		"errors", len(report.Errors))
	return report, nil
}

// selectNewTopic obtains one unlearned candidate topic, or reports
// false when none is available for any reason.
func (c *Coordinator) selectNewTopic(
	ctx context.Context,
	log *slog.Logger,
	known map[string]struct{},
) (srs.Candidate, bool) {
	candidates, err := c.topicSource.ListCandidates(ctx)
	if err != nil {
		if errors.Is(err, generation.ErrNoCandidates) {
			log.InfoContext(ctx, "topic source has no candidates")
		} else {
			log.WarnContext(ctx, "topic source failed, treating as no candidates", "error", err)
		}
		return srs.Candidate{}, false
	}

	unlearned := c.scheduler.FilterUnlearned(candidates, known)
	candidate, ok := c.scheduler.PickOne(unlearned)
	if ok {
		// Static topic files may omit the category. Default it here so
		// the delivered digest and the persisted card agree; a card with
		// an empty category would fail validation after delivery.
		if candidate.Category == "" {
			candidate.Category = string(domain.CategoryGeneral)
		}
		log.InfoContext(ctx, "new topic selected",
			"topic", candidate.Topic,
			"category", candidate.Category,
			"candidates", len(candidates),
			"unlearned", len(unlearned))
	}
	return candidate, ok
}

func (c *Coordinator) generateReviews(
	ctx context.Context,
	log *slog.Logger,
	due []*domain.KnowledgeCard,
	report *RunReport,
) []generatedReview {
	reviews := make([]generatedReview, 0, len(due))
	for _, card := range due {
		prompt, err := c.generator.GenerateReviewPrompt(ctx, card)
		if err != nil {
			log.WarnContext(ctx, "review generation failed, card stays due",
				"topic", card.Topic,
				"review_stage", card.ReviewStage,
				"error", err)
			report.recordError(card.Topic, fmt.Errorf("review for %q: %w", card.Topic, err))
			continue
		}
		reviews = append(reviews, generatedReview{card: card, prompt: prompt})
		log.DebugContext(ctx, "review generated",
			"topic", card.Topic,
			"review_stage", card.ReviewStage)
	}
	return reviews
}

func (c *Coordinator) buildDigest(
	today time.Time,
	candidate srs.Candidate,
	haveCandidate bool,
	article *generation.Article,
	reviews []generatedReview,
	learnedCount, dueCount int,
) *notify.Digest {
	digest := &notify.Digest{
		Date: today,
		Stats: notify.Stats{
			LearnedCount: learnedCount,
			DueCount:     dueCount,
		},
	}

	if haveCandidate && article != nil {
		digest.NewItem = &notify.NewItem{
			Topic:    candidate.Topic,
			Category: domain.Category(candidate.Category),
			Body:     article.Body,
		}
	}

	for _, r := range reviews {
		digest.Reviews = append(digest.Reviews, notify.ReviewItem{
			Topic:    r.card.Topic,
			Category: r.card.Category,
			Stage:    r.card.ReviewStage,
			Prompt:   r.prompt,
		})
	}

	return digest
}

func (c *Coordinator) persist(
	ctx context.Context,
	log *slog.Logger,
	report *RunReport,
	candidate srs.Candidate,
	haveCandidate bool,
	article *generation.Article,
	reviews []generatedReview,
	today time.Time,
) {
	if haveCandidate && article != nil {
		card, err := domain.NewKnowledgeCard(
			candidate.Topic,
			domain.Category(candidate.Category),
			article.Summary,
			today,
			c.scheduler.ComputeInitialDueDate(today),
		)
		if err != nil {
			report.recordError(candidate.Topic, fmt.Errorf("building card for %q: %w", candidate.Topic, err))
		} else if err := c.cards.CreateCard(ctx, card); err != nil {
			if store.IsDuplicateError(err) {
				// The topic slipped past dedup, most likely inserted by
				// an earlier partial run. Treat it as already learned.
				log.WarnContext(ctx, "topic already learned, keeping existing card",
					"topic", candidate.Topic)
			} else {
				report.recordError(candidate.Topic, fmt.Errorf("persisting card for %q: %w", candidate.Topic, err))
			}
		} else {
			report.NewCardCreated = true
			log.InfoContext(ctx, "new learning recorded",
				"topic", card.Topic,
				"next_review_date", card.NextReviewDate.Format(time.DateOnly))
		}
	}

	for _, r := range reviews {
		updated, err := c.cards.AdvanceStage(ctx, r.card.ID, today)
		if err != nil {
			if store.IsNotFoundError(err) {
				log.WarnContext(ctx, "card disappeared before stage advance, skipping",
					"topic", r.card.Topic)
				continue
			}
			report.recordError(r.card.Topic, fmt.Errorf("advancing %q: %w", r.card.Topic, err))
			continue
		}
		report.ReviewsAdvanced++
		log.InfoContext(ctx, "review recorded",
			"topic", updated.Topic,
			"review_stage", updated.ReviewStage,
			"next_review_date", updated.NextReviewDate.Format(time.DateOnly))
	}
}
