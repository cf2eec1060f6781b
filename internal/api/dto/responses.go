package dto

import (
	"time"

	"github.com/okanelab/receipt-sync-backend/internal/domain/matcher"
	"github.com/okanelab/receipt-sync-backend/internal/domain/parser"
	"github.com/okanelab/receipt-sync-backend/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ParsedReceiptResponse is the parse endpoint's view of a receipt.
type ParsedReceiptResponse struct {
	Amount      float64 `json:"amount,omitempty"`
	Date        string  `json:"date,omitempty"`
	Vendor      string  `json:"vendor,omitempty"`
	Description string  `json:"description,omitempty"`
	RawText     string  `json:"raw_text"`
}

// NewParsedReceiptResponse converts a domain receipt for the wire.
func NewParsedReceiptResponse(receipt *parser.ParsedReceipt) ParsedReceiptResponse {
	resp := ParsedReceiptResponse{
		Amount:      receipt.Amount,
		Vendor:      receipt.Vendor,
		Description: receipt.Description,
		RawText:     receipt.RawText,
	}
	if receipt.HasDate() {
		resp.Date = receipt.Date.Format("2006-01-02")
	}
	return resp
}

// MatchResponse is one ranked match in the match endpoint's output.
type MatchResponse struct {
	TransactionID int64   `json:"transaction_id"`
	Description   string  `json:"description,omitempty"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	Score         float64 `json:"score"`
	MatchType     string  `json:"match_type"`
}

// MatchListResponse is returned by the match endpoint.
type MatchListResponse struct {
	Matches []MatchResponse `json:"matches"`
	Count   int             `json:"count"`
}

// NewMatchListResponse converts matcher results for the wire.
func NewMatchListResponse(results []matcher.MatchResult) MatchListResponse {
	matches := make([]MatchResponse, 0, len(results))
	for _, r := range results {
		matches = append(matches, MatchResponse{
			TransactionID: r.Transaction.ID,
			Description:   r.Transaction.Description,
			Amount:        r.Transaction.Amount,
			Date:          r.Transaction.Date,
			Score:         r.Score,
			MatchType:     string(r.MatchType),
		})
	}
	return MatchListResponse{Matches: matches, Count: len(matches)}
}

// ReceiptResponse represents a stored receipt in API responses.
type ReceiptResponse struct {
	ID          string  `json:"id"`
	FileName    string  `json:"file_name"`
	Amount      float64 `json:"amount,omitempty"`
	Date        string  `json:"date,omitempty"`
	Vendor      string  `json:"vendor,omitempty"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	ParsedAt    string  `json:"parsed_at"`
}

// NewReceiptResponse converts a storage record for the wire.
func NewReceiptResponse(record *storage.ReceiptRecord) ReceiptResponse {
	return ReceiptResponse{
		ID:          record.ID,
		FileName:    record.FileName,
		Amount:      record.Amount,
		Date:        record.Date,
		Vendor:      record.Vendor,
		Description: record.Description,
		Status:      record.Status,
		ParsedAt:    record.ParsedAt.UTC().Format(time.RFC3339),
	}
}

// StoredMatchResponse represents a persisted match record.
type StoredMatchResponse struct {
	TransactionID int64   `json:"transaction_id"`
	Score         float64 `json:"score"`
	MatchType     string  `json:"match_type"`
	Filed         bool    `json:"filed"`
}

// RunResponse represents a reconciliation run in API responses.
type RunResponse struct {
	ID            string `json:"id"`
	StartedAt     string `json:"started_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
	DryRun        bool   `json:"dry_run"`
	ReceiptsFound int    `json:"receipts_found"`
	Matched       int    `json:"matched"`
	NeedsReview   int    `json:"needs_review"`
	Unmatched     int    `json:"unmatched"`
	Status        string `json:"status"`
}

// NewRunResponse converts a run record for the wire.
func NewRunResponse(record *storage.RunRecord) RunResponse {
	resp := RunResponse{
		ID:            record.ID,
		StartedAt:     record.StartedAt.UTC().Format(time.RFC3339),
		DryRun:        record.DryRun,
		ReceiptsFound: record.ReceiptsFound,
		Matched:       record.Matched,
		NeedsReview:   record.NeedsReview,
		Unmatched:     record.Unmatched,
		Status:        record.Status,
	}
	if !record.CompletedAt.IsZero() {
		resp.CompletedAt = record.CompletedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// StatsResponse aggregates reconciliation outcomes.
type StatsResponse struct {
	TotalReceipts    int     `json:"total_receipts"`
	MatchedCount     int     `json:"matched_count"`
	NeedsReviewCount int     `json:"needs_review_count"`
	UnmatchedCount   int     `json:"unmatched_count"`
	MatchRate        float64 `json:"match_rate"`
	TotalAmount      float64 `json:"total_amount"`
}
