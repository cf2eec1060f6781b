package storage

import (
	"fmt"
	"sort"
	"sync"
)

// MockRepository is an in-memory Repository for tests.
type MockRepository struct {
	mu       sync.Mutex
	receipts map[string]*ReceiptRecord
	matches  map[string][]*MatchRecord
	runs     map[string]*RunRecord
	nextID   int64
}

var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates an empty in-memory repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		receipts: make(map[string]*ReceiptRecord),
		matches:  make(map[string][]*MatchRecord),
		runs:     make(map[string]*RunRecord),
	}
}

func (m *MockRepository) SaveReceipt(record *ReceiptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts[record.ID] = record
	return nil
}

func (m *MockRepository) GetReceipt(id string) (*ReceiptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.receipts[id]
	if !ok {
		return nil, fmt.Errorf("receipt %s not found", id)
	}
	return record, nil
}

func (m *MockRepository) ListReceipts(limit int) ([]*ReceiptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var records []*ReceiptRecord
	for _, r := range m.receipts {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ParsedAt.After(records[j].ParsedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *MockRepository) SaveMatch(record *MatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	record.ID = m.nextID
	m.matches[record.ReceiptID] = append(m.matches[record.ReceiptID], record)
	return nil
}

func (m *MockRepository) GetMatchesByReceiptID(receiptID string) ([]*MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := append([]*MatchRecord(nil), m.matches[receiptID]...)
	sort.Slice(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
	return records, nil
}

func (m *MockRepository) StartRun(record *RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.Status = "running"
	m.runs[record.ID] = record
	return nil
}

func (m *MockRepository) CompleteRun(runID string, matched, needsReview, unmatched int, withErrors bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}
	run.Matched = matched
	run.NeedsReview = needsReview
	run.Unmatched = unmatched
	run.Status = "completed"
	if withErrors {
		run.Status = "completed_with_errors"
	}
	return nil
}

func (m *MockRepository) ListRuns(limit int) ([]*RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var records []*RunRecord
	for _, r := range m.runs {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *MockRepository) GetStats() (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &Stats{}
	for _, r := range m.receipts {
		stats.TotalReceipts++
		stats.TotalAmount += r.Amount
		switch r.Status {
		case ReceiptStatusMatched:
			stats.MatchedCount++
		case ReceiptStatusNeedsReview:
			stats.NeedsReviewCount++
		case ReceiptStatusUnmatched:
			stats.UnmatchedCount++
		}
	}
	if stats.TotalReceipts > 0 {
		stats.MatchRate = float64(stats.MatchedCount) / float64(stats.TotalReceipts)
	}
	return stats, nil
}

func (m *MockRepository) Close() error { return nil }
