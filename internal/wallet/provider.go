package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/chainsim/internal/chain"
	"github.com/Mohsinsiddi/chainsim/internal/config"
	"github.com/Mohsinsiddi/chainsim/internal/logger"
)

// ErrWalletUnavailable is returned when no signing account can be obtained.
var ErrWalletUnavailable = errors.New("wallet unavailable")

// TxRequest describes a transaction to submit. An empty To creates a
// contract. Gas 0 means estimate.
type TxRequest struct {
	To    string
	Data  []byte
	Value *big.Int
	Gas   uint64
}

// Provider obtains an account and submits transactions on its behalf.
type Provider interface {
	Account(ctx context.Context) (string, error)
	SendTransaction(ctx context.Context, req TxRequest) (string, error)
}

// NodeProvider uses the first unlocked account of the node, as local
// development nodes (Hardhat, Anvil, Ganache) expose them.
type NodeProvider struct {
	client *chain.EVMClient
	log    *zap.Logger
}

// NewNodeProvider returns a provider that lets the node sign.
func NewNodeProvider(client *chain.EVMClient) *NodeProvider {
	return &NodeProvider{client: client, log: logger.Named("wallet")}
}

func (p *NodeProvider) Account(ctx context.Context) (string, error) {
	accounts, err := p.client.Accounts(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWalletUnavailable, err)
	}
	if len(accounts) == 0 {
		return "", fmt.Errorf("%w: node has no unlocked accounts", ErrWalletUnavailable)
	}
	return accounts[0], nil
}

func (p *NodeProvider) SendTransaction(ctx context.Context, req TxRequest) (string, error) {
	from, err := p.Account(ctx)
	if err != nil {
		return "", err
	}
	msg := chain.CallMsg{From: from, To: req.To, Data: req.Data, Value: req.Value, Gas: req.Gas}
	if msg.Gas == 0 {
		if msg.Gas, err = estimate(ctx, p.client, p.log, msg); err != nil {
			return "", err
		}
	}
	return p.client.SendTransaction(ctx, msg)
}

// KeyProvider signs transactions locally with a stored key and submits them
// with eth_sendRawTransaction.
type KeyProvider struct {
	client *chain.EVMClient
	signer *Signer
	log    *zap.Logger
}

// NewKeyProvider returns a provider that signs as w.
func NewKeyProvider(client *chain.EVMClient, w *Wallet, ks KeyStore) *KeyProvider {
	return &KeyProvider{
		client: client,
		signer: NewSigner(w, ks),
		log:    logger.Named("wallet").With(zap.String("wallet", w.Name)),
	}
}

func (p *KeyProvider) Account(context.Context) (string, error) {
	return p.signer.Address(), nil
}

func (p *KeyProvider) SendTransaction(ctx context.Context, req TxRequest) (string, error) {
	from := p.signer.Address()

	chainID, err := p.client.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching chain id: %w", err)
	}
	nonce, err := p.client.PendingNonce(ctx, from)
	if err != nil {
		return "", fmt.Errorf("fetching nonce: %w", err)
	}

	msg := chain.CallMsg{From: from, To: req.To, Data: req.Data, Value: req.Value, Gas: req.Gas}
	if msg.Gas == 0 {
		if msg.Gas, err = estimate(ctx, p.client, p.log, msg); err != nil {
			return "", err
		}
	}
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	var to *common.Address
	if req.To != "" {
		addr := common.HexToAddress(req.To)
		to = &addr
	}

	baseFee, err := p.client.BaseFee(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching base fee: %w", err)
	}

	var tx *types.Transaction
	if baseFee != nil {
		tip := p.client.MaxPriorityFee(ctx)
		feeCap := new(big.Int).Add(new(big.Int).Mul(baseFee, big.NewInt(2)), tip)
		tx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       msg.Gas,
			To:        to,
			Value:     value,
			Data:      req.Data,
		})
	} else {
		gasPrice, err := p.client.GasPrice(ctx)
		if err != nil {
			return "", fmt.Errorf("fetching gas price: %w", err)
		}
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      msg.Gas,
			To:       to,
			Value:    value,
			Data:     req.Data,
		})
	}

	raw, err := p.signer.SignTx(tx, chainID)
	if err != nil {
		return "", err
	}
	p.log.Debug("sending signed transaction", zap.Uint64("nonce", nonce), zap.Uint64("gas", msg.Gas))
	return p.client.SendRawTransaction(ctx, raw)
}

// estimate asks the node for a gas limit. A node-side rejection (usually a
// revert) is returned as is; transport failures fall back to the static
// limits.
func estimate(ctx context.Context, client *chain.EVMClient, log *zap.Logger, msg chain.CallMsg) (uint64, error) {
	gas, err := client.EstimateGas(ctx, msg)
	if err == nil {
		// 20% headroom.
		return gas + gas/5, nil
	}
	var rpcErr *chain.RPCError
	if errors.As(err, &rpcErr) {
		return 0, err
	}
	fallback := config.GasLimitContractCall
	if msg.To == "" {
		fallback = config.GasLimitDeploy
	}
	log.Debug("gas estimation failed, using fallback", zap.Error(err), zap.Uint64("gas", fallback))
	return fallback, nil
}
