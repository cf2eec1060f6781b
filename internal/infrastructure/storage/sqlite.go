package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for reconciliation records.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveReceipt inserts or replaces a parsed receipt record
func (s *Storage) SaveReceipt(record *ReceiptRecord) error {
	query := `
	INSERT OR REPLACE INTO receipts
	(id, file_name, raw_text, amount, date, vendor, description, status, run_id, parsed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		record.ID,
		record.FileName,
		record.RawText,
		record.Amount,
		record.Date,
		record.Vendor,
		record.Description,
		record.Status,
		record.RunID,
		record.ParsedAt,
	)
	return err
}

// GetReceipt retrieves a receipt record by ID
func (s *Storage) GetReceipt(id string) (*ReceiptRecord, error) {
	query := `
	SELECT id, file_name, raw_text, amount, date, vendor, description, status, run_id, parsed_at
	FROM receipts WHERE id = ?
	`

	record := &ReceiptRecord{}
	err := s.db.QueryRow(query, id).Scan(
		&record.ID,
		&record.FileName,
		&record.RawText,
		&record.Amount,
		&record.Date,
		&record.Vendor,
		&record.Description,
		&record.Status,
		&record.RunID,
		&record.ParsedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListReceipts returns the most recently parsed receipts
func (s *Storage) ListReceipts(limit int) ([]*ReceiptRecord, error) {
	query := `
	SELECT id, file_name, raw_text, amount, date, vendor, description, status, run_id, parsed_at
	FROM receipts
	ORDER BY parsed_at DESC
	LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []*ReceiptRecord
	for rows.Next() {
		record := &ReceiptRecord{}
		if err := rows.Scan(
			&record.ID,
			&record.FileName,
			&record.RawText,
			&record.Amount,
			&record.Date,
			&record.Vendor,
			&record.Description,
			&record.Status,
			&record.RunID,
			&record.ParsedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SaveMatch inserts one scored receipt-transaction pairing
func (s *Storage) SaveMatch(record *MatchRecord) error {
	query := `
	INSERT INTO match_records
	(receipt_id, transaction_id, score, match_type, filed, matched_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		record.ReceiptID,
		record.TransactionID,
		record.Score,
		record.MatchType,
		record.Filed,
		record.MatchedAt,
	)
	if err != nil {
		return err
	}

	record.ID, _ = result.LastInsertId()
	return nil
}

// GetMatchesByReceiptID retrieves all match records for a receipt, best first
func (s *Storage) GetMatchesByReceiptID(receiptID string) ([]*MatchRecord, error) {
	query := `
	SELECT id, receipt_id, transaction_id, score, match_type, filed, matched_at
	FROM match_records
	WHERE receipt_id = ?
	ORDER BY score DESC
	`

	rows, err := s.db.Query(query, receiptID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []*MatchRecord
	for rows.Next() {
		record := &MatchRecord{}
		if err := rows.Scan(
			&record.ID,
			&record.ReceiptID,
			&record.TransactionID,
			&record.Score,
			&record.MatchType,
			&record.Filed,
			&record.MatchedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// StartRun records the start of a reconciliation run
func (s *Storage) StartRun(record *RunRecord) error {
	query := `
	INSERT INTO reconcile_runs (id, started_at, dry_run, receipts_found, status)
	VALUES (?, ?, ?, ?, 'running')
	`

	_, err := s.db.Exec(query, record.ID, record.StartedAt, record.DryRun, record.ReceiptsFound)
	return err
}

// CompleteRun records the completion of a reconciliation run
func (s *Storage) CompleteRun(runID string, matched, needsReview, unmatched int, withErrors bool) error {
	status := "completed"
	if withErrors {
		status = "completed_with_errors"
	}

	query := `
	UPDATE reconcile_runs
	SET completed_at = ?, matched = ?, needs_review = ?, unmatched = ?, status = ?
	WHERE id = ?
	`

	_, err := s.db.Exec(query, time.Now().UTC(), matched, needsReview, unmatched, status, runID)
	return err
}

// ListRuns returns the most recent reconciliation runs
func (s *Storage) ListRuns(limit int) ([]*RunRecord, error) {
	query := `
	SELECT id, started_at, completed_at, dry_run, receipts_found, matched, needs_review, unmatched, status
	FROM reconcile_runs
	ORDER BY started_at DESC
	LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []*RunRecord
	for rows.Next() {
		record := &RunRecord{}
		var completedAt sql.NullTime
		if err := rows.Scan(
			&record.ID,
			&record.StartedAt,
			&completedAt,
			&record.DryRun,
			&record.ReceiptsFound,
			&record.Matched,
			&record.NeedsReview,
			&record.Unmatched,
			&record.Status,
		); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			record.CompletedAt = completedAt.Time
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetStats returns aggregate reconciliation statistics
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{}

	query := `
	SELECT
		COUNT(*) as total,
		COUNT(CASE WHEN status = 'matched' THEN 1 END) as matched,
		COUNT(CASE WHEN status = 'needs_review' THEN 1 END) as needs_review,
		COUNT(CASE WHEN status = 'unmatched' THEN 1 END) as unmatched,
		COALESCE(SUM(amount), 0) as total_amount
	FROM receipts
	`

	err := s.db.QueryRow(query).Scan(
		&stats.TotalReceipts,
		&stats.MatchedCount,
		&stats.NeedsReviewCount,
		&stats.UnmatchedCount,
		&stats.TotalAmount,
	)
	if err != nil {
		return nil, err
	}

	if stats.TotalReceipts > 0 {
		stats.MatchRate = float64(stats.MatchedCount) / float64(stats.TotalReceipts)
	}
	return stats, nil
}
