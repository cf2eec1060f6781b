package storage

import "time"

// Receipt statuses recorded after a reconciliation pass.
const (
	ReceiptStatusMatched     = "matched"      // auto-filed against a transaction
	ReceiptStatusNeedsReview = "needs_review" // candidates exist but below the auto-file bar
	ReceiptStatusUnmatched   = "unmatched"    // no candidate survived the minimum score
)

// ReceiptRecord is one parsed receipt persisted for audit and review.
type ReceiptRecord struct {
	ID          string // uuid
	FileName    string
	RawText     string
	Amount      float64
	Date        string // YYYY-MM-DD, empty when extraction found none
	Vendor      string
	Description string
	Status      string
	RunID       string
	ParsedAt    time.Time
}

// MatchRecord is one scored receipt-transaction pairing.
type MatchRecord struct {
	ID            int64
	ReceiptID     string
	TransactionID int64
	Score         float64
	MatchType     string
	Filed         bool // receipt was registered and attached in freee
	MatchedAt     time.Time
}

// RunRecord summarizes one reconciliation run.
type RunRecord struct {
	ID            string // uuid
	StartedAt     time.Time
	CompletedAt   time.Time
	DryRun        bool
	ReceiptsFound int
	Matched       int
	NeedsReview   int
	Unmatched     int
	Status        string // "running", "completed", "completed_with_errors"
}

// Stats aggregates reconciliation outcomes for the dashboard.
type Stats struct {
	TotalReceipts    int
	MatchedCount     int
	NeedsReviewCount int
	UnmatchedCount   int
	MatchRate        float64
	TotalAmount      float64
}
