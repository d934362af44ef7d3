package invoke

import (
	"slices"
	"sync"
)

// GasRecord is the cost of one confirmed write invocation.
type GasRecord struct {
	Function string
	GasUsed  uint64
	TxHash   string
}

// Ledger is an append-only list of gas records. Only Append and Clear
// mutate it; it is safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	records []GasRecord
}

// Append adds a record.
func (l *Ledger) Append(r GasRecord) {
	l.mu.Lock()
	l.records = append(l.records, r)
	l.mu.Unlock()
}

// Clear removes every record.
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.records = nil
	l.mu.Unlock()
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Records returns a copy in insertion order.
func (l *Ledger) Records() []GasRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.records)
}

// Sorted returns a copy ordered by gas used, cheapest first. Ties keep
// insertion order.
func (l *Ledger) Sorted() []GasRecord {
	out := l.Records()
	slices.SortStableFunc(out, func(a, b GasRecord) int {
		switch {
		case a.GasUsed < b.GasUsed:
			return -1
		case a.GasUsed > b.GasUsed:
			return 1
		}
		return 0
	})
	return out
}
