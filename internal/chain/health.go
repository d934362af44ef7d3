package chain

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Health is the result of pinging one network.
type Health struct {
	Network     string
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Healthy reports whether the node answered.
func (h Health) Healthy() bool { return h.Err == nil }

// PingAll pings every network (name → RPC URL) in parallel, each bounded by
// timeout, and returns the results sorted by network name.
func PingAll(ctx context.Context, networks map[string]string, timeout time.Duration) []Health {
	results := make([]Health, 0, len(networks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, url := range networks {
		wg.Add(1)
		go func(name, url string) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			latency, block, err := NewEVMClient(url).Ping(pctx)

			mu.Lock()
			results = append(results, Health{
				Network:     name,
				URL:         url,
				Latency:     latency,
				BlockNumber: block,
				Err:         err,
			})
			mu.Unlock()
		}(name, url)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Network < results[j].Network })
	return results
}
