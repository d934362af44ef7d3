package chain

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockServer answers every request with eth_blockNumber = blockNum.
func blockServer(t *testing.T, blockNum uint64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":"0x%x"}`, blockNum)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPingAll(t *testing.T) {
	up := blockServer(t, 1000)
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(down.Close)

	results := PingAll(context.Background(), map[string]string{
		"zeta":  up.URL,
		"alpha": down.URL,
	}, time.Second)

	require.Len(t, results, 2)
	assert.Equal(t, "alpha", results[0].Network)
	assert.False(t, results[0].Healthy())
	assert.Error(t, results[0].Err)

	assert.Equal(t, "zeta", results[1].Network)
	assert.True(t, results[1].Healthy())
	assert.Equal(t, uint64(1000), results[1].BlockNumber)
	assert.Equal(t, up.URL, results[1].URL)
}

func TestPingAllTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)

	start := time.Now()
	results := PingAll(context.Background(), map[string]string{"slow": slow.URL}, 50*time.Millisecond)
	require.Len(t, results, 1)
	assert.False(t, results[0].Healthy())
	assert.Less(t, time.Since(start), time.Second)
}

func TestPingAllEmpty(t *testing.T) {
	assert.Empty(t, PingAll(context.Background(), nil, time.Second))
}
