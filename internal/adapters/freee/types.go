package freee

import "time"

// Transaction statuses as reported by the freee deals API.
const (
	StatusPending     = "pending"
	StatusSettled     = "settled"
	StatusTransferred = "transferred"
)

// Transaction is a freee deal: one ledger entry that a receipt can be
// matched against. Read-only from this backend's point of view.
type Transaction struct {
	ID          int64   `json:"id"`
	Date        string  `json:"issue_date"` // YYYY-MM-DD
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	ReceiptIDs  []int64 `json:"receipt_ids"`
}

// DateTime parses the transaction's issue date.
func (t *Transaction) DateTime() (time.Time, error) {
	return time.Parse("2006-01-02", t.Date)
}

// HasReceipt reports whether any receipt is already attached.
func (t *Transaction) HasReceipt() bool {
	return len(t.ReceiptIDs) > 0
}

// Receipt represents a receipt registered in freee.
type Receipt struct {
	ID          int64  `json:"id"`
	CompanyID   int64  `json:"company_id"`
	IssueDate   string `json:"issue_date"` // YYYY-MM-DD
	Description string `json:"description"`
	Status      string `json:"status"` // "unconfirmed", "confirmed"
	FileName    string `json:"file_name"`
}

// CreateReceiptRequest is the payload for registering a receipt.
// File upload is handled separately via multipart/form-data.
type CreateReceiptRequest struct {
	CompanyID   int64  `json:"company_id"`
	IssueDate   string `json:"issue_date"`
	Description string `json:"description"`
	FileName    string `json:"file_name"`
}
