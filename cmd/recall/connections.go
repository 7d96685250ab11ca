package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/platform/gemini"
	"github.com/phrazzld/recall-api/internal/platform/smtpmail"
	"github.com/phrazzld/recall-api/internal/redact"
)

// testConnections verifies each external dependency in turn and prints
// a line per check. It exercises the same constructors as a live run,
// so configuration problems surface here first.
func testConnections(ctx context.Context, log *slog.Logger, cfg *config.Config) int {
	ok := true

	fmt.Println("Testing connections...")

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		// Driver errors can echo the DSN back, credentials included.
		fmt.Printf("  database: FAILED (%s)\n", redact.String(err.Error()))
		ok = false
	} else {
		fmt.Println("  database: ok")
		_ = db.Close()
	}

	generator, err := gemini.NewGeminiGenerator(ctx, log, cfg.LLM, srs.NewDefaultParams())
	if err != nil {
		fmt.Printf("  gemini: FAILED (%v)\n", err)
		ok = false
	} else if err := generator.Ping(ctx); err != nil {
		fmt.Printf("  gemini: FAILED (%v)\n", err)
		ok = false
	} else {
		fmt.Println("  gemini: ok")
	}

	notifier, err := smtpmail.NewNotifier(log, cfg.SMTP)
	if err != nil {
		fmt.Printf("  smtp: FAILED (%v)\n", err)
		ok = false
	} else if err := notifier.Ping(ctx); err != nil {
		fmt.Printf("  smtp: FAILED (%v)\n", err)
		ok = false
	} else {
		fmt.Println("  smtp: ok")
	}

	if errs := cfg.DeliveryErrors(); len(errs) > 0 {
		fmt.Println("Configuration issues:")
		for _, e := range errs {
			fmt.Printf("  - %s\n", e)
		}
		ok = false
	}

	if !ok {
		return 1
	}
	fmt.Println("All connections ok.")
	return 0
}
