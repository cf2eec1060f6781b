package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/okanelab/receipt-sync-backend/internal/adapters/extractor"
	"github.com/okanelab/receipt-sync-backend/internal/adapters/freee"
	"github.com/okanelab/receipt-sync-backend/internal/application/reconcile"
	"github.com/okanelab/receipt-sync-backend/internal/domain/matcher"
	"github.com/okanelab/receipt-sync-backend/internal/infrastructure/config"
	"github.com/okanelab/receipt-sync-backend/internal/infrastructure/storage"
	"github.com/okanelab/receipt-sync-backend/internal/observability"
)

func main() {
	var (
		configFile   = flag.String("config", "config.yaml", "Configuration file path")
		dir          = flag.String("dir", "", "Directory with receipt PDFs (overrides config)")
		dryRun       = flag.Bool("dry-run", true, "Preview matches without filing to freee")
		lookbackDays = flag.Int("days", 0, "Transaction lookback window in days (overrides config)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	cfg := config.LoadOrEnvWithPath(*configFile)

	logCfg := cfg.Observability.Logging
	if *verbose {
		logCfg.Level = "debug"
	}
	logger := observability.NewLogger(logCfg)

	if cfg.Freee.AccessToken == "" {
		logger.Error("freee access token is not configured")
		os.Exit(1)
	}

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	client := freee.NewClient(cfg.Freee.AccessToken, cfg.Freee.CompanyID)
	m := matcher.NewMatcher(cfg.Matching.Criteria())

	orchestrator := reconcile.New(client, m, store, extractor.ExtractText, logger)

	receiptsDir := cfg.Receipts.Dir
	if *dir != "" {
		receiptsDir = *dir
	}

	opts := reconcile.DefaultOptions(receiptsDir)
	opts.DryRun = *dryRun
	if *lookbackDays > 0 {
		opts.LookbackDays = *lookbackDays
	} else if cfg.Receipts.LookbackDays > 0 {
		opts.LookbackDays = cfg.Receipts.LookbackDays
	}
	if cfg.Matching.AutoFileScore > 0 {
		opts.AutoFileScore = cfg.Matching.AutoFileScore
	}

	summary, err := orchestrator.Run(context.Background(), opts)
	if err != nil {
		logger.Error("Reconciliation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Run %s: %d receipts, %d matched, %d need review, %d unmatched, %d errors\n",
		summary.RunID, summary.ReceiptsFound, summary.Matched,
		summary.NeedsReview, summary.Unmatched, summary.Errors)

	if summary.Errors > 0 {
		os.Exit(1)
	}
}
