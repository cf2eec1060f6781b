// Package reconcile runs the receipt reconciliation pipeline: extract
// text from receipt PDFs, parse them, match them against freee
// transactions, persist the outcome, and optionally file high-confidence
// matches back to freee.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okanelab/receipt-sync-backend/internal/adapters/freee"
	"github.com/okanelab/receipt-sync-backend/internal/domain/matcher"
	"github.com/okanelab/receipt-sync-backend/internal/domain/parser"
	"github.com/okanelab/receipt-sync-backend/internal/infrastructure/storage"
)

// AccountingClient is the freee surface the orchestrator needs.
type AccountingClient interface {
	ListTransactions(ctx context.Context, startDate, endDate string) ([]*freee.Transaction, error)
	CreateReceipt(ctx context.Context, req freee.CreateReceiptRequest) (*freee.Receipt, error)
	AttachReceipt(ctx context.Context, transactionID, receiptID int64) error
}

// ExtractFunc turns a receipt file into text. The PDF extractor is the
// production implementation; tests substitute fixtures.
type ExtractFunc func(path string) (string, error)

// Options controls one reconciliation run.
type Options struct {
	Dir           string  // directory holding receipt PDFs
	LookbackDays  int     // transaction window, counted back from today
	DryRun        bool    // score and record, but never file to freee
	AutoFileScore float64 // matches at or above this are filed automatically
}

// DefaultOptions returns the standard run configuration.
func DefaultOptions(dir string) Options {
	return Options{
		Dir:           dir,
		LookbackDays:  30,
		AutoFileScore: 0.9,
	}
}

// Summary reports the outcome of one run.
type Summary struct {
	RunID         string
	ReceiptsFound int
	Matched       int
	NeedsReview   int
	Unmatched     int
	Errors        int
}

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	client  AccountingClient
	parser  *parser.Parser
	matcher *matcher.Matcher
	repo    storage.Repository
	extract ExtractFunc
	logger  *slog.Logger
	now     func() time.Time
}

// New creates an orchestrator.
func New(client AccountingClient, m *matcher.Matcher, repo storage.Repository, extract ExtractFunc, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		client:  client,
		parser:  parser.New(),
		matcher: m,
		repo:    repo,
		extract: extract,
		logger:  logger,
		now:     time.Now,
	}
}

// Run processes every PDF in opts.Dir against transactions from the
// lookback window. A receipt that cannot be extracted or matched is
// recorded and skipped; it never aborts the batch.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Summary, error) {
	files, err := o.listReceiptFiles(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipt files: %w", err)
	}

	summary := &Summary{
		RunID:         uuid.NewString(),
		ReceiptsFound: len(files),
	}

	if err := o.repo.StartRun(&storage.RunRecord{
		ID:            summary.RunID,
		StartedAt:     o.now().UTC(),
		DryRun:        opts.DryRun,
		ReceiptsFound: len(files),
	}); err != nil {
		return nil, fmt.Errorf("failed to record run start: %w", err)
	}

	endDate := o.now()
	startDate := endDate.AddDate(0, 0, -opts.LookbackDays)

	o.logger.Debug("fetching transactions",
		"start_date", startDate.Format("2006-01-02"),
		"end_date", endDate.Format("2006-01-02"),
	)

	transactions, err := o.client.ListTransactions(ctx,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	o.logger.Info("starting reconciliation run",
		"run_id", summary.RunID,
		"receipts", len(files),
		"transactions", len(transactions),
		"dry_run", opts.DryRun,
	)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := o.processReceipt(ctx, file, transactions, opts, summary); err != nil {
			o.logger.Error("failed to process receipt", "file", file, "error", err)
			summary.Errors++
		}
	}

	if err := o.repo.CompleteRun(summary.RunID, summary.Matched, summary.NeedsReview, summary.Unmatched, summary.Errors > 0); err != nil {
		o.logger.Error("failed to record run completion", "run_id", summary.RunID, "error", err)
	}

	return summary, nil
}

// processReceipt handles one file end to end.
func (o *Orchestrator) processReceipt(ctx context.Context, file string, transactions []*freee.Transaction, opts Options, summary *Summary) error {
	text, err := o.extract(file)
	if err != nil {
		// No text layer is a manual-entry case, not a pipeline failure.
		o.logger.Warn("could not extract text", "file", file, "error", err)
		text = ""
	}

	receipt := o.parser.Parse(text)
	record := &storage.ReceiptRecord{
		ID:          uuid.NewString(),
		FileName:    filepath.Base(file),
		RawText:     receipt.RawText,
		Amount:      receipt.Amount,
		Vendor:      receipt.Vendor,
		Description: receipt.Description,
		Status:      storage.ReceiptStatusUnmatched,
		RunID:       summary.RunID,
		ParsedAt:    o.now().UTC(),
	}
	if receipt.HasDate() {
		record.Date = receipt.Date.Format("2006-01-02")
	}

	matches := o.matcher.FindMatches(receipt, transactions)
	switch {
	case len(matches) == 0:
		summary.Unmatched++
	case matches[0].Score >= opts.AutoFileScore:
		record.Status = storage.ReceiptStatusMatched
		summary.Matched++
	default:
		record.Status = storage.ReceiptStatusNeedsReview
		summary.NeedsReview++
	}

	if err := o.repo.SaveReceipt(record); err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}

	for i, match := range matches {
		filed := false
		if i == 0 && record.Status == storage.ReceiptStatusMatched && !opts.DryRun {
			if err := o.fileReceipt(ctx, record, match); err != nil {
				return err
			}
			filed = true
		}

		if err := o.repo.SaveMatch(&storage.MatchRecord{
			ReceiptID:     record.ID,
			TransactionID: match.Transaction.ID,
			Score:         match.Score,
			MatchType:     string(match.MatchType),
			Filed:         filed,
			MatchedAt:     o.now().UTC(),
		}); err != nil {
			return fmt.Errorf("failed to save match: %w", err)
		}
	}

	o.logger.Debug("processed receipt",
		"file", record.FileName,
		"status", record.Status,
		"candidates", len(matches),
	)
	return nil
}

// fileReceipt registers the receipt in freee and attaches it to the
// matched transaction.
func (o *Orchestrator) fileReceipt(ctx context.Context, record *storage.ReceiptRecord, match matcher.MatchResult) error {
	created, err := o.client.CreateReceipt(ctx, freee.CreateReceiptRequest{
		IssueDate:   record.Date,
		Description: record.Description,
		FileName:    record.FileName,
	})
	if err != nil {
		return fmt.Errorf("failed to register receipt in freee: %w", err)
	}

	if err := o.client.AttachReceipt(ctx, match.Transaction.ID, created.ID); err != nil {
		return fmt.Errorf("failed to attach receipt: %w", err)
	}

	o.logger.Info("filed receipt",
		"file", record.FileName,
		"transaction_id", match.Transaction.ID,
		"score", match.Score,
	)
	return nil
}

// listReceiptFiles returns the PDF files in dir, sorted by name.
func (o *Orchestrator) listReceiptFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
