// Package main implements the recall CLI, which runs the daily
// spaced-repetition knowledge cycle: learn one new topic, review due
// cards, deliver the digest by email, and record progress.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/notify"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/platform/smtpmail"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/phrazzld/recall-api/internal/workflow"
)

// previewPath is where a dry run writes the rendered digest, so what
// would have been emailed can be inspected.
const previewPath = "email_preview.html"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	command := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet("recall", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file (default: config.yaml if present)")
	dryRun := fs.Bool("dry-run", false, "generate content without delivering or persisting")
	skipEmail := fs.Bool("skip-email", false, "persist progress without sending the digest")
	static := fs.Bool("static", false, "use the static topics file instead of dynamic topic generation")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	log := logger.Setup(cfg.Log.Level)
	ctx := logger.WithLogger(context.Background(), log)

	switch command {
	case "run":
		return runDaily(ctx, log, cfg, workflow.Options{
			DryRun:       *dryRun,
			SkipDelivery: *skipEmail,
		}, *static)
	case "status":
		return showStatus(ctx, log, cfg)
	case "test-connections":
		return testConnections(ctx, log, cfg)
	case "init-db":
		return initDB(ctx, log, cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (expected run, status, test-connections or init-db)\n", command)
		return 2
	}
}

func runDaily(
	ctx context.Context,
	log *slog.Logger,
	cfg *config.Config,
	opts workflow.Options,
	useStatic bool,
) int {
	// Live runs must be fully configured before any state changes or
	// LLM spend; dry runs tolerate missing delivery credentials.
	if !opts.DryRun && !opts.SkipDelivery {
		if errs := cfg.DeliveryErrors(); len(errs) > 0 {
			for _, e := range errs {
				log.Error("configuration error", "error", e)
			}
			return 1
		}
	}

	app, err := newApp(ctx, log, cfg, appOptions{
		useStatic:    useStatic,
		needNotifier: !opts.DryRun && !opts.SkipDelivery,
	})
	if err != nil {
		log.Error("failed to initialize application", "error", err)
		return 1
	}
	defer app.Close()

	report, err := app.coordinator.Run(ctx, opts)
	if err != nil {
		log.Error("daily cycle failed",
			"error", err,
			"status", string(report.Status),
			"new_card_created", report.NewCardCreated,
			"reviews_advanced", report.ReviewsAdvanced)
		return 1
	}

	if report.Status == workflow.StatusCompletedWithErrors {
		log.Warn("daily cycle completed with skipped items",
			"skipped", strings.Join(report.SkippedTopics, ", "),
			"errors", len(report.Errors))
	}

	if opts.DryRun {
		if err := writePreview(report.Digest); err != nil {
			log.Warn("failed to write digest preview", "error", err)
		} else {
			log.Info("digest preview written", "path", previewPath)
		}
	}
	return 0
}

// writePreview renders the digest the same way delivery would and saves
// it next to the working directory.
func writePreview(digest *notify.Digest) error {
	if digest == nil {
		return fmt.Errorf("no digest was assembled")
	}
	html, err := smtpmail.RenderHTML(digest)
	if err != nil {
		return fmt.Errorf("rendering digest preview: %w", err)
	}
	return os.WriteFile(previewPath, []byte(html), 0o644)
}

func showStatus(ctx context.Context, log *slog.Logger, cfg *config.Config) int {
	app, err := newApp(ctx, log, cfg, appOptions{storageOnly: true})
	if err != nil {
		log.Error("failed to initialize application", "error", err)
		return 1
	}
	defer app.Close()

	// Both stat queries read the same snapshot.
	var stats *workflow.Stats
	err = store.RunInTransaction(ctx, app.db, func(ctx context.Context, tx *sql.Tx) error {
		stats, err = workflow.CollectStats(ctx, app.cards.WithTx(tx), time.Now())
		return err
	})
	if err != nil {
		log.Error("failed to collect stats", "error", err)
		return 1
	}

	printStats(stats)
	return 0
}

func initDB(ctx context.Context, log *slog.Logger, cfg *config.Config) int {
	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		return 1
	}
	defer func() { _ = db.Close() }()

	if err := ensureSchema(db); err != nil {
		log.Error("failed to initialize schema", "error", err)
		return 1
	}

	fmt.Println("storage initialized")
	return 0
}
