package binding

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Mohsinsiddi/chainsim/internal/chain"
	"github.com/Mohsinsiddi/chainsim/internal/invoke"
)

// JSON-RPC codes used by nodes and wallets.
const (
	codeExecutionReverted = 3
	codeUserRejected      = 4001
)

func (c *Contract) mapError(err error) error {
	return mapError(c.abi, err)
}

// mapError translates node errors into invoke errors. Reverts carry the
// decoded reason when the node returns revert data.
func mapError(parsed abi.ABI, err error) error {
	if errors.Is(err, chain.ErrTxReverted) {
		return fmt.Errorf("%w: %v", invoke.ErrCallReverted, err)
	}
	var rpcErr *chain.RPCError
	if !errors.As(err, &rpcErr) {
		return err
	}
	msg := strings.ToLower(rpcErr.Message)
	switch {
	case rpcErr.Code == codeUserRejected, strings.Contains(msg, "user denied"), strings.Contains(msg, "user rejected"):
		return fmt.Errorf("%w: %s", invoke.ErrUserRejected, rpcErr.Message)
	case rpcErr.Code == codeExecutionReverted, strings.Contains(msg, "revert"):
		if reason := revertReason(parsed, rpcErr.RevertData()); reason != "" {
			return fmt.Errorf("%w: %s", invoke.ErrCallReverted, reason)
		}
		return fmt.Errorf("%w: %s", invoke.ErrCallReverted, rpcErr.Message)
	}
	return err
}

// revertReason decodes Error(string), Panic(uint256) or a custom error
// declared in the ABI. It returns "" when data matches none of them.
func revertReason(parsed abi.ABI, data string) string {
	raw, err := hexutil.Decode(data)
	if err != nil || len(raw) < 4 {
		return ""
	}
	if reason, err := abi.UnpackRevert(raw); err == nil {
		return reason
	}
	for _, e := range parsed.Errors {
		if !bytes.Equal(raw[:4], e.ID[:4]) {
			continue
		}
		args, err := e.Inputs.Unpack(raw[4:])
		if err != nil {
			return e.Name
		}
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		return e.Name + "(" + strings.Join(parts, ", ") + ")"
	}
	return ""
}
