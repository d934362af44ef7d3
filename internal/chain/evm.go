// Package chain is a minimal JSON-RPC client for EVM nodes.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/chainsim/internal/config"
	"github.com/Mohsinsiddi/chainsim/internal/logger"
)

// ErrTxReverted is returned by WaitForReceipt for a mined transaction whose
// status is 0.
var ErrTxReverted = errors.New("transaction reverted")

// EVMClient talks to one EVM node over HTTP JSON-RPC.
type EVMClient struct {
	url          string
	client       *http.Client
	pollInterval time.Duration
	log          *zap.Logger
	nextID       atomic.Int64
}

// CallMsg is the argument object of eth_call, eth_estimateGas and
// eth_sendTransaction. Empty fields are omitted.
type CallMsg struct {
	From  string
	To    string // empty for contract creation
	Data  []byte
	Value *big.Int
	Gas   uint64
}

func (m CallMsg) params() map[string]string {
	p := make(map[string]string, 5)
	if m.From != "" {
		p["from"] = m.From
	}
	if m.To != "" {
		p["to"] = m.To
	}
	if len(m.Data) > 0 {
		p["data"] = hexutil.Encode(m.Data)
	}
	if m.Value != nil && m.Value.Sign() > 0 {
		p["value"] = hexutil.EncodeBig(m.Value)
	}
	if m.Gas > 0 {
		p["gas"] = hexutil.EncodeUint64(m.Gas)
	}
	return p
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
func NewEVMClient(url string) *EVMClient {
	return &EVMClient{
		url:          url,
		client:       &http.Client{Timeout: config.RPCTimeout},
		pollInterval: config.ReceiptPollInterval,
		log:          logger.Named("rpc"),
	}
}

// URL returns the endpoint.
func (c *EVMClient) URL() string { return c.url }

// SetPollInterval changes how often WaitForReceipt polls.
func (c *EVMClient) SetPollInterval(d time.Duration) { c.pollInterval = d }

// ChainID returns the chain's ID.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "eth_chainId")
}

// BlockNumber returns the latest block number.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.callBig(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Balance returns the wei balance of address.
func (c *EVMClient) Balance(ctx context.Context, address string) (*big.Int, error) {
	return c.callBig(ctx, "eth_getBalance", address, "latest")
}

// Accounts returns the accounts the node manages (eth_accounts).
func (c *EVMClient) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.call(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// PendingNonce returns the transaction count of address including queued
// transactions.
func (c *EVMClient) PendingNonce(ctx context.Context, address string) (uint64, error) {
	n, err := c.callBig(ctx, "eth_getTransactionCount", address, "pending")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// GasPrice returns the legacy gas price.
func (c *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "eth_gasPrice")
}

// BaseFee returns the base fee of the latest block, or nil on chains
// without EIP-1559.
func (c *EVMClient) BaseFee(ctx context.Context) (*big.Int, error) {
	var block *struct {
		BaseFeePerGas *hexutil.Big `json:"baseFeePerGas"`
	}
	if err := c.call(ctx, &block, "eth_getBlockByNumber", "latest", false); err != nil {
		return nil, err
	}
	if block == nil || block.BaseFeePerGas == nil {
		return nil, nil
	}
	return block.BaseFeePerGas.ToInt(), nil
}

// MaxPriorityFee returns the node's suggested tip, falling back to 1 gwei
// when the node does not implement eth_maxPriorityFeePerGas.
func (c *EVMClient) MaxPriorityFee(ctx context.Context) *big.Int {
	tip, err := c.callBig(ctx, "eth_maxPriorityFeePerGas")
	if err != nil {
		return big.NewInt(1_000_000_000)
	}
	return tip
}

// EstimateGas estimates gas for msg.
func (c *EVMClient) EstimateGas(ctx context.Context, msg CallMsg) (uint64, error) {
	n, err := c.callBig(ctx, "eth_estimateGas", msg.params())
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Call runs eth_call against the latest block and returns the raw output.
func (c *EVMClient) Call(ctx context.Context, msg CallMsg) ([]byte, error) {
	var out hexutil.Bytes
	if err := c.call(ctx, &out, "eth_call", msg.params(), "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// Code returns the bytecode at address; empty for accounts without code.
func (c *EVMClient) Code(ctx context.Context, address string) ([]byte, error) {
	var out hexutil.Bytes
	if err := c.call(ctx, &out, "eth_getCode", address, "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// SendTransaction asks the node to sign and send msg with one of its own
// accounts (eth_sendTransaction).
func (c *EVMClient) SendTransaction(ctx context.Context, msg CallMsg) (string, error) {
	var hash string
	if err := c.call(ctx, &hash, "eth_sendTransaction", msg.params()); err != nil {
		return "", err
	}
	return hash, nil
}

// SendRawTransaction broadcasts a signed raw transaction.
func (c *EVMClient) SendRawTransaction(ctx context.Context, raw []byte) (string, error) {
	var hash string
	if err := c.call(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(raw)); err != nil {
		return "", err
	}
	return hash, nil
}

// TxReceipt holds the on-chain receipt of a mined transaction.
type TxReceipt struct {
	Hash            string
	Status          uint64 // 1 = success, 0 = reverted
	BlockNumber     uint64
	GasUsed         uint64
	ContractAddress string // non-empty when a contract was deployed
}

// Receipt fetches the receipt for hash. It returns nil, nil while the
// transaction is pending.
func (c *EVMClient) Receipt(ctx context.Context, hash string) (*TxReceipt, error) {
	var r *struct {
		Status          hexutil.Uint64 `json:"status"`
		BlockNumber     hexutil.Uint64 `json:"blockNumber"`
		GasUsed         hexutil.Uint64 `json:"gasUsed"`
		ContractAddress string         `json:"contractAddress"`
	}
	if err := c.call(ctx, &r, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	return &TxReceipt{
		Hash:            hash,
		Status:          uint64(r.Status),
		BlockNumber:     uint64(r.BlockNumber),
		GasUsed:         uint64(r.GasUsed),
		ContractAddress: r.ContractAddress,
	}, nil
}

// WaitForReceipt polls until the transaction is mined or ctx is done. A
// reverted transaction returns its receipt together with ErrTxReverted.
func (c *EVMClient) WaitForReceipt(ctx context.Context, hash string) (*TxReceipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := c.Receipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if receipt.Status == 0 {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrTxReverted, hash)
			}
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction %s not mined: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	return time.Since(start), blockNum, err
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int64  `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is an error object returned by the node. Data carries revert
// payloads on nodes that return them.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// RevertData returns the hex revert payload carried in Data, if any.
func (e *RPCError) RevertData() string {
	var s string
	if json.Unmarshal(e.Data, &s) == nil && strings.HasPrefix(s, "0x") {
		return s
	}
	var obj struct {
		Data string `json:"data"`
	}
	if json.Unmarshal(e.Data, &obj) == nil && strings.HasPrefix(obj.Data, "0x") {
		return obj.Data
	}
	return ""
}

func (c *EVMClient) call(ctx context.Context, out any, method string, params ...any) error {
	if params == nil {
		params = []any{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("rpc call", zap.String("method", method))
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("parsing %s result: %w", method, err)
	}
	return nil
}

func (c *EVMClient) callBig(ctx context.Context, method string, params ...any) (*big.Int, error) {
	var n hexutil.Big
	if err := c.call(ctx, &n, method, params...); err != nil {
		return nil, err
	}
	return n.ToInt(), nil
}

// --- math helpers ---

var eth1 = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// WeiToETH converts a wei amount to an ETH decimal string.
func WeiToETH(wei *big.Int) string {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, eth1)
	return f.Text('f', 18)
}

// WeiToGwei converts a Wei value to Gwei as float64.
func WeiToGwei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(
		new(big.Float).SetInt(wei),
		new(big.Float).SetFloat64(1e9),
	).Float64()
	return f
}
