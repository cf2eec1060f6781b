package storage

// Repository is the persistence surface used by the reconciliation
// orchestrator and the API handlers. The SQLite implementation is the
// real one; MockRepository backs handler tests.
type Repository interface {
	SaveReceipt(record *ReceiptRecord) error
	GetReceipt(id string) (*ReceiptRecord, error)
	ListReceipts(limit int) ([]*ReceiptRecord, error)

	SaveMatch(record *MatchRecord) error
	GetMatchesByReceiptID(receiptID string) ([]*MatchRecord, error)

	StartRun(record *RunRecord) error
	CompleteRun(runID string, matched, needsReview, unmatched int, withErrors bool) error
	ListRuns(limit int) ([]*RunRecord, error)

	GetStats() (*Stats, error)

	Close() error
}
