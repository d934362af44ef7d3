// Package binding connects parsed contract interfaces to a node: it packs
// arguments with the go-ethereum ABI codec, runs calls, submits transactions
// through a wallet provider and maps node failures onto invoke errors.
package binding

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/chainsim/internal/chain"
	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/Mohsinsiddi/chainsim/internal/invoke"
	"github.com/Mohsinsiddi/chainsim/internal/logger"
	"github.com/Mohsinsiddi/chainsim/internal/wallet"
)

// Contract is a deployed contract reachable through one node.
type Contract struct {
	address  string
	abi      abi.ABI
	client   *chain.EVMClient
	provider wallet.Provider
	log      *zap.Logger
}

// ParseABI builds the codec's view of entries.
func ParseABI(entries []contract.ABIEntry) (abi.ABI, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return abi.ABI{}, err
	}
	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parsing ABI: %w", err)
	}
	return parsed, nil
}

// New binds entries to the contract at address. provider may be nil for
// read-only use; transactions then fail with wallet.ErrWalletUnavailable.
func New(address string, entries []contract.ABIEntry, client *chain.EVMClient, provider wallet.Provider) (*Contract, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid contract address %q", address)
	}
	parsed, err := ParseABI(entries)
	if err != nil {
		return nil, err
	}
	return &Contract{
		address:  common.HexToAddress(address).Hex(),
		abi:      parsed,
		client:   client,
		provider: provider,
		log:      logger.Named("binding").With(zap.String("contract", address)),
	}, nil
}

// Address returns the checksummed contract address.
func (c *Contract) Address() string { return c.address }

// Function implements invoke.Contract. Names are the codec's unique method
// names, which contract.NewInterface reproduces.
func (c *Contract) Function(name string) (invoke.Callable, bool) {
	m, ok := c.abi.Methods[name]
	if !ok {
		return nil, false
	}
	return &method{c: c, m: m}, true
}

type method struct {
	c *Contract
	m abi.Method
}

func (f *method) pack(args []contract.Value) ([]byte, error) {
	goArgs, err := packArgs(f.m.Inputs, args)
	if err != nil {
		return nil, err
	}
	data, err := f.c.abi.Pack(f.m.Name, goArgs...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", f.m.Sig, err)
	}
	return data, nil
}

// Call implements invoke.Callable.
func (f *method) Call(ctx context.Context, args []contract.Value) (contract.Value, error) {
	data, err := f.pack(args)
	if err != nil {
		return nil, err
	}
	msg := chain.CallMsg{To: f.c.address, Data: data}
	if f.c.provider != nil {
		// msg.sender matters for view functions that read it.
		if from, err := f.c.provider.Account(ctx); err == nil {
			msg.From = from
		}
	}
	f.c.log.Debug("eth_call", zap.String("method", f.m.Sig))
	out, err := f.c.client.Call(ctx, msg)
	if err != nil {
		return nil, f.c.mapError(err)
	}
	return unpackResult(f.m.Outputs, out)
}

// Transact implements invoke.Callable.
func (f *method) Transact(ctx context.Context, args []contract.Value, value *uint256.Int) (invoke.PendingTx, error) {
	if f.c.provider == nil {
		return nil, wallet.ErrWalletUnavailable
	}
	data, err := f.pack(args)
	if err != nil {
		return nil, err
	}
	req := wallet.TxRequest{To: f.c.address, Data: data}
	if value != nil && !value.IsZero() {
		if !f.m.IsPayable() {
			return nil, fmt.Errorf("%s is not payable", f.m.Sig)
		}
		req.Value = value.ToBig()
	}
	f.c.log.Debug("sending transaction", zap.String("method", f.m.Sig))
	hash, err := f.c.provider.SendTransaction(ctx, req)
	if err != nil {
		return nil, f.c.mapError(err)
	}
	return &pendingTx{c: f.c, hash: hash}, nil
}

type pendingTx struct {
	c    *Contract
	hash string
}

func (p *pendingTx) Hash() string { return p.hash }

func (p *pendingTx) Wait(ctx context.Context) (*invoke.Receipt, error) {
	r, err := p.c.client.WaitForReceipt(ctx, p.hash)
	if err != nil {
		return nil, p.c.mapError(err)
	}
	return &invoke.Receipt{TxHash: r.Hash, GasUsed: r.GasUsed}, nil
}
