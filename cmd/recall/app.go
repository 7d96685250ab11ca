package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/generation"
	"github.com/phrazzld/recall-api/internal/notify"
	"github.com/phrazzld/recall-api/internal/platform/gemini"
	"github.com/phrazzld/recall-api/internal/platform/postgres"
	"github.com/phrazzld/recall-api/internal/platform/smtpmail"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/phrazzld/recall-api/internal/topics"
	"github.com/phrazzld/recall-api/internal/workflow"
)

// appOptions select which collaborators a command needs.
type appOptions struct {
	// storageOnly skips LLM and notifier construction (status command).
	storageOnly bool

	// useStatic selects the static topics file as the only topic source.
	useStatic bool

	// needNotifier requires working SMTP configuration.
	needNotifier bool
}

// app holds the wired application components for one invocation.
type app struct {
	db          *sql.DB
	cards       store.CardStore
	scheduler   srs.Service
	generator   *gemini.GeminiGenerator
	notifier    notify.Notifier
	coordinator *workflow.Coordinator
}

// newApp wires the application: storage, scheduler, and, unless
// storageOnly is set, the LLM generator, topic source and notifier.
func newApp(ctx context.Context, log *slog.Logger, cfg *config.Config, opts appOptions) (*app, error) {
	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	scheduler := srs.NewDefaultService()
	cards := postgres.NewPostgresCardStore(db, scheduler, log)

	a := &app{
		db:        db,
		cards:     cards,
		scheduler: scheduler,
	}

	if opts.storageOnly {
		return a, nil
	}

	generator, err := gemini.NewGeminiGenerator(ctx, log, cfg.LLM, srs.NewDefaultParams())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating generator: %w", err)
	}
	a.generator = generator

	staticSource := topics.NewFileSource(log, cfg.Topics.Path)
	var topicSource generation.TopicSource = staticSource
	if !opts.useStatic {
		dynamic, err := gemini.NewDynamicTopicSource(log, generator, cards)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating topic source: %w", err)
		}
		// Dynamic selection falls back to the static list when the LLM
		// cannot propose a usable topic.
		topicSource = topics.NewFallbackSource(log, dynamic, staticSource)
	}

	if opts.needNotifier {
		notifier, err := smtpmail.NewNotifier(log, cfg.SMTP)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating notifier: %w", err)
		}
		a.notifier = notifier
	}

	coordinator, err := workflow.NewCoordinator(log, cards, scheduler, topicSource, generator, a.notifier)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating coordinator: %w", err)
	}
	a.coordinator = coordinator

	return a, nil
}

// Close releases the application's resources.
func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
