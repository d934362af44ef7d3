package invoke

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerSorted(t *testing.T) {
	var l Ledger
	l.Append(GasRecord{Function: "a", GasUsed: 50000, TxHash: "0x1"})
	l.Append(GasRecord{Function: "b", GasUsed: 21000, TxHash: "0x2"})
	l.Append(GasRecord{Function: "c", GasUsed: 50000, TxHash: "0x3"})
	l.Append(GasRecord{Function: "d", GasUsed: 30000, TxHash: "0x4"})

	sorted := l.Sorted()
	var fns []string
	for i, r := range sorted {
		fns = append(fns, r.Function)
		if i > 0 {
			assert.LessOrEqual(t, sorted[i-1].GasUsed, r.GasUsed)
		}
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, fns)

	// Insertion order is untouched.
	assert.Equal(t, "a", l.Records()[0].Function)
}

func TestLedgerCopies(t *testing.T) {
	var l Ledger
	l.Append(GasRecord{Function: "a", GasUsed: 1})

	recs := l.Records()
	recs[0].Function = "changed"
	assert.Equal(t, "a", l.Records()[0].Function)
}

func TestLedgerClear(t *testing.T) {
	var l Ledger
	l.Append(GasRecord{Function: "a", GasUsed: 1})
	l.Append(GasRecord{Function: "b", GasUsed: 2})
	l.Clear()
	assert.Empty(t, l.Sorted())
	assert.Empty(t, l.Records())
	assert.Equal(t, 0, l.Len())
}

func TestLedgerConcurrentAppend(t *testing.T) {
	var l Ledger
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Append(GasRecord{Function: "f", GasUsed: uint64(i)})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, l.Len())
}
