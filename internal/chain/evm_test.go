package chain

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type rpcCall struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     int64             `json:"id"`
}

// rpcMock creates a test HTTP server that serves a fixed JSON-RPC response
// per method. Pass method→result pairs; any unknown method returns an RPC
// error. Received calls are recorded.
type rpcMock struct {
	*httptest.Server
	mu    sync.Mutex
	calls []rpcCall
}

func newRPCMock(t *testing.T, responses map[string]any) *rpcMock {
	t.Helper()
	m := &rpcMock{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcCall
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		m.mu.Lock()
		m.calls = append(m.calls, req)
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if result, ok := responses[req.Method]; ok {
			resp["result"] = result
		} else {
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *rpcMock) last(t *testing.T) rpcCall {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.calls)
	return m.calls[len(m.calls)-1]
}

// rpcErrorServer creates a test HTTP server that always returns a JSON-RPC error.
func rpcErrorServer(t *testing.T, rpcErr map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct{ ID int64 `json:"id"` }
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   rpcErr,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

var ctx = context.Background()

// ---------------------------------------------------------------------------
// simple getters
// ---------------------------------------------------------------------------

func TestChainIDAndBlockNumber(t *testing.T) {
	srv := newRPCMock(t, map[string]any{
		"eth_chainId":     "0x7a69",
		"eth_blockNumber": "0x10",
	})
	c := NewEVMClient(srv.URL)

	id, err := c.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(31337), id.Int64())

	n, err := c.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), n)

	latency, n, err := c.Ping(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), n)
	assert.Greater(t, latency, time.Duration(0))
}

func TestAccounts(t *testing.T) {
	srv := newRPCMock(t, map[string]any{
		"eth_accounts": []string{"0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"},
	})
	accounts, err := NewEVMClient(srv.URL).Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"}, accounts)
}

func TestBalanceAndNonce(t *testing.T) {
	srv := newRPCMock(t, map[string]any{
		"eth_getBalance":          "0xde0b6b3a7640000",
		"eth_getTransactionCount": "0x5",
	})
	c := NewEVMClient(srv.URL)

	bal, err := c.Balance(ctx, "0x01")
	require.NoError(t, err)
	assert.Equal(t, "1.000000000000000000", WeiToETH(bal))

	nonce, err := c.PendingNonce(ctx, "0x01")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), nonce)
	assert.JSONEq(t, `"pending"`, string(srv.last(t).Params[1]))
}

func TestFees(t *testing.T) {
	srv := newRPCMock(t, map[string]any{
		"eth_gasPrice":         "0x3b9aca00",
		"eth_getBlockByNumber": map[string]any{"number": "0x1", "baseFeePerGas": "0x7"},
	})
	c := NewEVMClient(srv.URL)

	gp, err := c.GasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, WeiToGwei(gp))

	base, err := c.BaseFee(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), base.Int64())

	// eth_maxPriorityFeePerGas is not served: 1 gwei fallback.
	assert.Equal(t, int64(1_000_000_000), c.MaxPriorityFee(ctx).Int64())
}

func TestBaseFeeLegacyChain(t *testing.T) {
	srv := newRPCMock(t, map[string]any{
		"eth_getBlockByNumber": map[string]any{"number": "0x1"},
	})
	base, err := NewEVMClient(srv.URL).BaseFee(ctx)
	require.NoError(t, err)
	assert.Nil(t, base)
}

// ---------------------------------------------------------------------------
// calls and transactions
// ---------------------------------------------------------------------------

func TestCallEncodesMessage(t *testing.T) {
	srv := newRPCMock(t, map[string]any{
		"eth_call": "0x000000000000000000000000000000000000000000000000000000000000002a",
	})
	out, err := NewEVMClient(srv.URL).Call(ctx, CallMsg{
		From:  "0xaa",
		To:    "0xbb",
		Data:  []byte{0x2e, 0x64, 0xce, 0xc1},
		Value: big.NewInt(16),
	})
	require.NoError(t, err)
	require.Len(t, out, 32)
	assert.Equal(t, byte(42), out[31])

	last := srv.last(t)
	assert.Equal(t, "eth_call", last.Method)
	assert.JSONEq(t, `{"from":"0xaa","to":"0xbb","data":"0x2e64cec1","value":"0x10"}`, string(last.Params[0]))
	assert.JSONEq(t, `"latest"`, string(last.Params[1]))
}

func TestEstimateGasAndCode(t *testing.T) {
	srv := newRPCMock(t, map[string]any{
		"eth_estimateGas": "0x5208",
		"eth_getCode":     "0x6080",
	})
	c := NewEVMClient(srv.URL)

	gas, err := c.EstimateGas(ctx, CallMsg{From: "0xaa", Data: []byte{0x60}})
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)
	assert.JSONEq(t, `{"from":"0xaa","data":"0x60"}`, string(srv.last(t).Params[0]))

	code, err := c.Code(ctx, "0xbb")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80}, code)
}

func TestSendTransactions(t *testing.T) {
	srv := newRPCMock(t, map[string]any{
		"eth_sendTransaction":    "0xaaa",
		"eth_sendRawTransaction": "0xbbb",
	})
	c := NewEVMClient(srv.URL)

	hash, err := c.SendTransaction(ctx, CallMsg{From: "0x01", To: "0x02", Gas: 100000})
	require.NoError(t, err)
	assert.Equal(t, "0xaaa", hash)
	assert.JSONEq(t, `{"from":"0x01","to":"0x02","gas":"0x186a0"}`, string(srv.last(t).Params[0]))

	hash, err = c.SendRawTransaction(ctx, []byte{0x02, 0xf8})
	require.NoError(t, err)
	assert.Equal(t, "0xbbb", hash)
	assert.JSONEq(t, `"0x02f8"`, string(srv.last(t).Params[0]))
}

// ---------------------------------------------------------------------------
// receipts
// ---------------------------------------------------------------------------

func TestReceipt(t *testing.T) {
	srv := newRPCMock(t, map[string]any{
		"eth_getTransactionReceipt": map[string]any{
			"status":          "0x1",
			"blockNumber":     "0x2",
			"gasUsed":         "0xa9fc",
			"contractAddress": "0x5fbdb2315678afecb367f032d93f642f64180aa3",
		},
	})
	r, err := NewEVMClient(srv.URL).WaitForReceipt(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", r.Hash)
	assert.Equal(t, uint64(43516), r.GasUsed)
	assert.Equal(t, uint64(2), r.BlockNumber)
	assert.Equal(t, "0x5fbdb2315678afecb367f032d93f642f64180aa3", r.ContractAddress)
}

func TestReceiptPending(t *testing.T) {
	srv := newRPCMock(t, map[string]any{"eth_getTransactionReceipt": nil})
	c := NewEVMClient(srv.URL)

	r, err := c.Receipt(ctx, "0xabc")
	require.NoError(t, err)
	assert.Nil(t, r)

	c.SetPollInterval(5 * time.Millisecond)
	wctx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	_, err = c.WaitForReceipt(wctx, "0xabc")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForReceiptReverted(t *testing.T) {
	srv := newRPCMock(t, map[string]any{
		"eth_getTransactionReceipt": map[string]any{"status": "0x0", "blockNumber": "0x2", "gasUsed": "0x5208"},
	})
	r, err := NewEVMClient(srv.URL).WaitForReceipt(ctx, "0xabc")
	assert.ErrorIs(t, err, ErrTxReverted)
	require.NotNil(t, r)
	assert.Equal(t, uint64(21000), r.GasUsed)
}

// ---------------------------------------------------------------------------
// errors
// ---------------------------------------------------------------------------

func TestRPCErrorWithRevertData(t *testing.T) {
	srv := rpcErrorServer(t, map[string]any{
		"code":    3,
		"message": "execution reverted: not owner",
		"data":    "0x08c379a0",
	})
	_, err := NewEVMClient(srv.URL).Call(ctx, CallMsg{To: "0x01"})

	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, 3, rpcErr.Code)
	assert.Equal(t, "0x08c379a0", rpcErr.RevertData())
	assert.Contains(t, err.Error(), "not owner")
}

func TestRPCErrorNestedData(t *testing.T) {
	e := &RPCError{Data: json.RawMessage(`{"message":"revert","data":"0xdead"}`)}
	assert.Equal(t, "0xdead", e.RevertData())
	assert.Equal(t, "", (&RPCError{}).RevertData())
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{not valid json`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).ChainID(ctx)
	assert.ErrorContains(t, err, "parsing response")
}

func TestUnreachable(t *testing.T) {
	_, err := NewEVMClient("http://127.0.0.1:1").BlockNumber(ctx)
	assert.ErrorContains(t, err, "RPC request failed")
}

func TestWeiToETH(t *testing.T) {
	assert.Equal(t, "0.000000000000000000", WeiToETH(big.NewInt(0)))
	assert.Equal(t, "0.500000000000000000", WeiToETH(big.NewInt(500000000000000000)))
	assert.Equal(t, 0.0, WeiToGwei(nil))
}
