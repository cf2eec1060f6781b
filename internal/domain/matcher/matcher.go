// Package matcher ranks freee transactions by similarity to a parsed
// receipt using a weighted amount/date scoring model.
//
// Example usage:
//
//	m := matcher.NewMatcher(matcher.DefaultCriteria())
//	results := m.FindMatches(receipt, transactions)
//	for _, r := range results {
//		// results are sorted best first
//	}
package matcher

import (
	"math"
	"sort"
	"time"

	"github.com/okanelab/receipt-sync-backend/internal/adapters/freee"
	"github.com/okanelab/receipt-sync-backend/internal/domain/parser"
)

// Scoring policy constants. These are tuned values, not derived from
// data; tests probe the boundary behavior they produce.
const (
	amountWeight = 0.6
	dateWeight   = 0.4

	// Score at the edge of the respective tolerance window. Inside the
	// window the score decays linearly from 1.0 down to this value.
	amountEdgeScore = 0.8
	dateEdgeScore   = 0.7

	// Per-day penalty once the date difference exceeds the tolerance.
	datePenaltyPerDay = 0.1

	exactThreshold       = 0.9
	approximateThreshold = 0.7
)

// Matcher matches parsed receipts with freee transactions. It is
// stateless apart from the criteria fixed at construction and safe for
// concurrent use.
type Matcher struct {
	criteria Criteria
}

// NewMatcher creates a new matcher with the given criteria
func NewMatcher(criteria Criteria) *Matcher {
	return &Matcher{criteria: criteria}
}

// FindMatches scores every candidate transaction against the receipt,
// drops candidates below the minimum score, and returns the rest sorted
// best first. A receipt without both an amount and a date cannot be
// meaningfully scored and yields no matches.
func (m *Matcher) FindMatches(receipt *parser.ParsedReceipt, transactions []*freee.Transaction) []MatchResult {
	if receipt == nil || !receipt.HasAmount() || !receipt.HasDate() {
		return nil
	}

	var results []MatchResult
	for _, tx := range transactions {
		score := m.Score(receipt, tx)
		if score < m.criteria.MinimumScore {
			continue
		}
		results = append(results, MatchResult{
			Transaction: tx,
			Receipt:     receipt,
			Score:       score,
			MatchType:   Classify(score),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// Score computes the weighted similarity between a receipt and a
// transaction in [0,1]. Sub-scores that cannot be computed (missing
// amount on either side) drop out of the weighting entirely, so the
// remaining signal is not penalized; an unparsable transaction date
// contributes a zero date sub-score instead of aborting.
func (m *Matcher) Score(receipt *parser.ParsedReceipt, tx *freee.Transaction) float64 {
	var total, weights float64

	if receipt.HasAmount() && tx.Amount != 0 {
		total += amountWeight * m.amountScore(receipt.Amount, tx.Amount)
		weights += amountWeight
	}

	if receipt.HasDate() {
		dateScore := 0.0
		if txDate, err := tx.DateTime(); err == nil {
			dateScore = m.dateScore(receipt.Date, txDate)
		}
		total += dateWeight * dateScore
		weights += dateWeight
	}

	if weights == 0 {
		return 0
	}
	return total / weights
}

// amountScore compares amounts relative to the transaction amount.
// Within the tolerance window the score decays linearly from 1.0 to
// 0.8; beyond it a squared penalty on the relative difference drives
// the score to zero well before the amounts are twice apart.
func (m *Matcher) amountScore(receiptAmount, txAmount float64) float64 {
	if receiptAmount == txAmount {
		return 1.0
	}

	difference := math.Abs(receiptAmount - txAmount)
	tolerance := txAmount * m.criteria.AmountTolerance

	if tolerance > 0 && difference <= tolerance {
		return 1.0 - difference/tolerance*(1.0-amountEdgeScore)
	}

	ratio := difference / txAmount
	return math.Max(0, 1.0-(ratio*2)*(ratio*2))
}

// dateScore compares calendar dates by whole-day difference. Within
// the tolerance window the score decays linearly from 1.0 to 0.7, then
// by 0.1 per extra day, floored at zero.
func (m *Matcher) dateScore(receiptDate, txDate time.Time) float64 {
	days := receiptDate.Sub(txDate).Hours() / 24
	dayDiff := math.Abs(math.Floor(days))

	if dayDiff == 0 {
		return 1.0
	}

	tolerance := float64(m.criteria.DateTolerance)
	if tolerance > 0 && dayDiff <= tolerance {
		return 1.0 - dayDiff/tolerance*(1.0-dateEdgeScore)
	}

	return math.Max(0, dateEdgeScore-(dayDiff-tolerance)*datePenaltyPerDay)
}

// Classify maps a final score to its confidence tier.
func Classify(score float64) MatchType {
	switch {
	case score >= exactThreshold:
		return MatchExact
	case score >= approximateThreshold:
		return MatchApproximate
	default:
		return MatchPartial
	}
}
