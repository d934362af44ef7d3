package binding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Mohsinsiddi/chainsim/internal/chain"
	"github.com/Mohsinsiddi/chainsim/internal/config"
	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/Mohsinsiddi/chainsim/internal/logger"
	"github.com/Mohsinsiddi/chainsim/internal/wallet"
)

// ErrConstructorArgs is returned when constructor arguments do not parse.
var ErrConstructorArgs = errors.New("invalid constructor arguments")

// Deployment is the result of a confirmed contract creation.
type Deployment struct {
	Address  string
	TxHash   string
	GasUsed  uint64
	Deployer string
}

// ConstructorArgs parses raw constructor arguments of entries in order.
// Every failing argument is reported, not only the first.
func ConstructorArgs(entries []contract.ABIEntry, raw []string) ([]contract.Value, error) {
	var params []contract.Param
	if ctor := contract.Constructor(entries); ctor != nil {
		params = contract.ParseParams(ctor.Inputs)
	}
	if len(raw) != len(params) {
		return nil, fmt.Errorf("%w: constructor takes %d argument(s), got %d", ErrConstructorArgs, len(params), len(raw))
	}

	vals := make([]contract.Value, len(params))
	var msgs []string
	for i, p := range params {
		if p.Err != nil {
			msgs = append(msgs, fmt.Sprintf("%s: %v", paramLabel(p, i), p.Err))
			continue
		}
		v, err := contract.ParseValue(raw[i], p.Type)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("%s: %v", paramLabel(p, i), err))
			continue
		}
		vals[i] = v
	}
	if len(msgs) > 0 {
		return nil, fmt.Errorf("%w:\n  %s", ErrConstructorArgs, strings.Join(msgs, "\n  "))
	}
	return vals, nil
}

func paramLabel(p contract.Param, i int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("arg %d", i)
}

// Deploy creates art on chain with args and waits for the receipt.
func Deploy(ctx context.Context, client *chain.EVMClient, provider wallet.Provider, art *contract.Artifact, args []contract.Value) (*Deployment, error) {
	if !art.Deployable() {
		return nil, fmt.Errorf("%s has no bytecode", art.Name)
	}
	parsed, err := ParseABI(art.ABI)
	if err != nil {
		return nil, err
	}
	goArgs, err := packArgs(parsed.Constructor.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConstructorArgs, err)
	}
	packed, err := parsed.Pack("", goArgs...)
	if err != nil {
		return nil, fmt.Errorf("encoding constructor: %w", err)
	}

	deployer, err := provider.Account(ctx)
	if err != nil {
		return nil, err
	}

	data := append(append([]byte{}, art.Bytecode...), packed...)
	log := logger.Named("binding").With(zap.String("contract", art.Name))
	log.Info("deploying", zap.String("from", deployer), zap.Int("bytes", len(data)))

	hash, err := provider.SendTransaction(ctx, wallet.TxRequest{Data: data})
	if err != nil {
		return nil, mapError(parsed, err)
	}

	wctx, cancel := context.WithTimeout(ctx, config.TxDeployTimeout)
	defer cancel()
	r, err := client.WaitForReceipt(wctx, hash)
	if err != nil {
		return nil, mapError(parsed, err)
	}
	if r.ContractAddress == "" {
		return nil, fmt.Errorf("receipt for %s has no contract address", hash)
	}
	log.Info("deployed", zap.String("address", r.ContractAddress), zap.Uint64("gas_used", r.GasUsed))

	return &Deployment{
		Address:  r.ContractAddress,
		TxHash:   hash,
		GasUsed:  r.GasUsed,
		Deployer: deployer,
	}, nil
}
