package matcher

import (
	"github.com/okanelab/receipt-sync-backend/internal/adapters/freee"
	"github.com/okanelab/receipt-sync-backend/internal/domain/parser"
)

// Criteria holds matcher configuration. A caller-supplied Criteria
// replaces the defaults wholesale; fields are never merged individually.
type Criteria struct {
	AmountTolerance float64 // relative slack on the transaction amount (default 0.05)
	DateTolerance   int     // days (default 3)
	MinimumScore    float64 // results scoring below this are dropped (default 0.3)
}

// DefaultCriteria returns sensible defaults
func DefaultCriteria() Criteria {
	return Criteria{
		AmountTolerance: 0.05,
		DateTolerance:   3,
		MinimumScore:    0.3,
	}
}

// MatchType classifies match confidence, derived from the final score alone.
type MatchType string

const (
	MatchExact       MatchType = "exact"       // score >= 0.9
	MatchApproximate MatchType = "approximate" // score >= 0.7
	MatchPartial     MatchType = "partial"     // anything else above the minimum
)

// MatchResult pairs a candidate transaction with the receipt it was
// scored against. Transaction and Receipt are held by reference; the
// matcher never copies or mutates them.
type MatchResult struct {
	Transaction *freee.Transaction
	Receipt     *parser.ParsedReceipt
	Score       float64
	MatchType   MatchType
}
