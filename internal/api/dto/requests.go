package dto

import (
	"time"

	"github.com/okanelab/receipt-sync-backend/internal/adapters/freee"
	"github.com/okanelab/receipt-sync-backend/internal/domain/matcher"
	"github.com/okanelab/receipt-sync-backend/internal/domain/parser"
)

// ParseRequest carries raw OCR text to the parse endpoint.
type ParseRequest struct {
	Text string `json:"text"`
}

// ReceiptPayload is a receipt supplied by the caller for matching,
// typically a parse result the user has reviewed or corrected.
type ReceiptPayload struct {
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"` // YYYY-MM-DD, empty when unknown
	Vendor      string  `json:"vendor"`
	Description string  `json:"description"`
	RawText     string  `json:"raw_text"`
}

// ToParsedReceipt converts the payload to the domain type. An
// unparsable date is treated as absent, matching the parser's
// fail-soft behavior.
func (p ReceiptPayload) ToParsedReceipt() *parser.ParsedReceipt {
	receipt := &parser.ParsedReceipt{
		Amount:      p.Amount,
		Vendor:      p.Vendor,
		Description: p.Description,
		RawText:     p.RawText,
	}
	if p.Date != "" {
		if date, err := time.Parse("2006-01-02", p.Date); err == nil {
			receipt.Date = date
		}
	}
	return receipt
}

// CriteriaPayload overrides the matcher criteria for one request.
// Supplying it replaces all three fields; there is no partial merge.
type CriteriaPayload struct {
	AmountTolerance float64 `json:"amount_tolerance"`
	DateTolerance   int     `json:"date_tolerance_days"`
	MinimumScore    float64 `json:"minimum_score"`
}

// ToCriteria converts the payload to matcher criteria.
func (c CriteriaPayload) ToCriteria() matcher.Criteria {
	return matcher.Criteria{
		AmountTolerance: c.AmountTolerance,
		DateTolerance:   c.DateTolerance,
		MinimumScore:    c.MinimumScore,
	}
}

// MatchRequest asks for a ranking of the given transactions against
// one receipt.
type MatchRequest struct {
	Receipt      ReceiptPayload       `json:"receipt"`
	Transactions []*freee.Transaction `json:"transactions"`
	Criteria     *CriteriaPayload     `json:"criteria,omitempty"`
}
