package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okanelab/receipt-sync-backend/internal/adapters/freee"
	"github.com/okanelab/receipt-sync-backend/internal/domain/parser"
)

// Helper to create a test receipt with both matching signals present.
func makeReceipt(amount float64, date time.Time) *parser.ParsedReceipt {
	return &parser.ParsedReceipt{
		Amount:  amount,
		Date:    date,
		RawText: "test receipt",
	}
}

// Helper to create a test transaction.
func makeTransaction(id int64, amount float64, date string) *freee.Transaction {
	return &freee.Transaction{
		ID:     id,
		Amount: amount,
		Date:   date,
		Status: freee.StatusSettled,
	}
}

func TestFindMatches_ExactMatch(t *testing.T) {
	// Arrange
	m := NewMatcher(DefaultCriteria())
	receipt := makeReceipt(1000, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	transactions := []*freee.Transaction{
		makeTransaction(1, 1000, "2024-01-15"),
	}

	// Act
	results := m.FindMatches(receipt, transactions)

	// Assert
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 0.0001)
	assert.Equal(t, MatchExact, results[0].MatchType)
	assert.Same(t, transactions[0], results[0].Transaction)
	assert.Same(t, receipt, results[0].Receipt)
}

func TestFindMatches_ApproximateMatch(t *testing.T) {
	// Amount diff 50 is within the 5% tolerance (52.5), date diff one
	// day is within the 3-day tolerance.
	m := NewMatcher(DefaultCriteria())
	receipt := makeReceipt(1000, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	transactions := []*freee.Transaction{
		makeTransaction(1, 1050, "2024-01-14"),
	}

	results := m.FindMatches(receipt, transactions)

	require.Len(t, results, 1)
	assert.InDelta(t, 0.8457, results[0].Score, 0.001)
	assert.Equal(t, MatchApproximate, results[0].MatchType)
}

func TestFindMatches_LargeMismatchExcluded(t *testing.T) {
	// Twice the amount and five days off leaves nothing above the
	// default minimum score.
	m := NewMatcher(DefaultCriteria())
	receipt := makeReceipt(1000, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	transactions := []*freee.Transaction{
		makeTransaction(1, 2000, "2024-01-20"),
	}

	results := m.FindMatches(receipt, transactions)

	assert.Empty(t, results)
}

func TestFindMatches_MissingSignalShortCircuit(t *testing.T) {
	m := NewMatcher(DefaultCriteria())
	transactions := []*freee.Transaction{
		makeTransaction(1, 1000, "2024-01-15"),
	}

	// No amount, no date.
	assert.Empty(t, m.FindMatches(&parser.ParsedReceipt{RawText: "x"}, transactions))

	// Amount only.
	assert.Empty(t, m.FindMatches(&parser.ParsedReceipt{Amount: 1000, RawText: "x"}, transactions))

	// Date only.
	assert.Empty(t, m.FindMatches(&parser.ParsedReceipt{
		Date:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		RawText: "x",
	}, transactions))

	// Nil receipt.
	assert.Empty(t, m.FindMatches(nil, transactions))
}

func TestFindMatches_SortedDescendingAboveMinimum(t *testing.T) {
	m := NewMatcher(DefaultCriteria())
	receipt := makeReceipt(1000, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	transactions := []*freee.Transaction{
		makeTransaction(1, 1200, "2024-01-20"),
		makeTransaction(2, 1000, "2024-01-15"),
		makeTransaction(3, 1030, "2024-01-16"),
		makeTransaction(4, 5000, "2024-06-01"), // far off, excluded
	}

	results := m.FindMatches(receipt, transactions)

	require.NotEmpty(t, results)
	assert.Equal(t, int64(2), results[0].Transaction.ID)
	for i := 0; i+1 < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Score, results[i+1].Score)
	}
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, DefaultCriteria().MinimumScore)
		assert.Equal(t, Classify(r.Score), r.MatchType)
	}
}

func TestFindMatches_MalformedTransactionDoesNotAbort(t *testing.T) {
	m := NewMatcher(DefaultCriteria())
	receipt := makeReceipt(1000, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	transactions := []*freee.Transaction{
		makeTransaction(1, 1000, "not-a-date"), // date sub-score becomes 0
		makeTransaction(2, 1000, "2024-01-15"),
	}

	results := m.FindMatches(receipt, transactions)

	// The malformed candidate still scores on amount alone: 0.6/1.0.
	require.Len(t, results, 2)
	assert.Equal(t, int64(2), results[0].Transaction.ID)
	assert.InDelta(t, 0.6, results[1].Score, 0.0001)
}

func TestScore_MissingTransactionAmountDropsWeight(t *testing.T) {
	m := NewMatcher(DefaultCriteria())
	receipt := makeReceipt(1000, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	tx := makeTransaction(1, 0, "2024-01-15")

	// Only the date weight applies; a same-day match scores 1.0.
	assert.InDelta(t, 1.0, m.Score(receipt, tx), 0.0001)
}

func TestScore_NoApplicableSignals(t *testing.T) {
	m := NewMatcher(DefaultCriteria())
	receipt := &parser.ParsedReceipt{RawText: "x"}
	tx := makeTransaction(1, 0, "2024-01-15")

	assert.Equal(t, 0.0, m.Score(receipt, tx))
}

func TestAmountScore_BoundaryContinuity(t *testing.T) {
	m := NewMatcher(DefaultCriteria())

	// Exactly at the tolerance edge the score is exactly 0.8.
	assert.InDelta(t, 0.8, m.amountScore(1050, 1000), 1e-9)
	assert.InDelta(t, 1.0, m.amountScore(1000, 1000), 1e-9)
}

func TestAmountScore_Monotonic(t *testing.T) {
	m := NewMatcher(DefaultCriteria())

	prev := 1.1
	for diff := 0.0; diff <= 2000; diff += 10 {
		score := m.amountScore(1000+diff, 1000)
		assert.LessOrEqual(t, score, prev, "score must not increase with difference (diff=%v)", diff)
		prev = score
	}
}

func TestAmountScore_SquaredPenaltyOutsideTolerance(t *testing.T) {
	m := NewMatcher(DefaultCriteria())

	// 50% relative difference: 1 - (0.5*2)^2 = 0.
	assert.InDelta(t, 0.0, m.amountScore(1500, 1000), 1e-9)

	// 25% relative difference: 1 - (0.25*2)^2 = 0.75.
	assert.InDelta(t, 0.75, m.amountScore(1250, 1000), 1e-9)

	// Never negative.
	assert.Equal(t, 0.0, m.amountScore(5000, 1000))
}

func TestDateScore_BoundaryContinuity(t *testing.T) {
	m := NewMatcher(DefaultCriteria())
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.InDelta(t, 1.0, m.dateScore(base, base), 1e-9)

	// Exactly at the 3-day tolerance edge the score is exactly 0.7.
	assert.InDelta(t, 0.7, m.dateScore(base.AddDate(0, 0, 3), base), 1e-9)

	// One day beyond: 0.7 - 0.1.
	assert.InDelta(t, 0.6, m.dateScore(base.AddDate(0, 0, 4), base), 1e-9)

	// Floored at zero far out.
	assert.Equal(t, 0.0, m.dateScore(base.AddDate(0, 0, 30), base))
}

func TestDateScore_Monotonic(t *testing.T) {
	m := NewMatcher(DefaultCriteria())
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	prev := 1.1
	for days := 0; days <= 20; days++ {
		score := m.dateScore(base.AddDate(0, 0, days), base)
		assert.LessOrEqual(t, score, prev, "score must not increase with day diff (days=%d)", days)
		prev = score
	}
}

func TestDateScore_SymmetricAroundTransactionDate(t *testing.T) {
	m := NewMatcher(DefaultCriteria())
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	before := m.dateScore(base.AddDate(0, 0, -2), base)
	after := m.dateScore(base.AddDate(0, 0, 2), base)
	assert.InDelta(t, before, after, 1e-9)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  MatchType
	}{
		{1.0, MatchExact},
		{0.9, MatchExact},
		{0.8999, MatchApproximate},
		{0.7, MatchApproximate},
		{0.6999, MatchPartial},
		{0.3, MatchPartial},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %v", tt.score)
	}
}

func TestCustomCriteria_FullReplace(t *testing.T) {
	// Supplying criteria replaces all three fields; nothing merges with
	// the defaults.
	m := NewMatcher(Criteria{
		AmountTolerance: 0.10,
		DateTolerance:   1,
		MinimumScore:    0.8,
	})
	receipt := makeReceipt(1000, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	// 8% off is inside the widened 10% tolerance.
	assert.Greater(t, m.amountScore(1080, 1000), 0.8)

	// With MinimumScore 0.8 a partial-grade candidate is excluded.
	results := m.FindMatches(receipt, []*freee.Transaction{
		makeTransaction(1, 1300, "2024-01-15"),
	})
	assert.Empty(t, results)
}
