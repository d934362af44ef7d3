package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/Mohsinsiddi/chainsim/internal/invoke"
	"github.com/Mohsinsiddi/chainsim/internal/ui"
)

var callValue string

var callCmd = &cobra.Command{
	Use:   "call <contract> <function> [args...]",
	Short: "Call one contract function",
	Long: `Validate the arguments and call one function of a registered contract.

View and pure functions are read with eth_call. Other functions send a
transaction and wait for its receipt; --value sends ETH to payable ones.

Arguments are plain text, one per parameter:
  uint/int      decimal, e.g. 42 or -7
  bool          true | false
  address       0x-prefixed, 40 hex chars
  T[]           comma-separated, e.g. 1,2,3 (JSON for nested arrays)
  tuple         JSON array, e.g. [1, "Alice"]

Examples:
  chainsim call adder add 2 3
  chainsim call people addPerson '[1, "Alice"]'
  chainsim call bank deposit --value 0.5`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, fnName, raw := args[0], args[1], args[2:]

		bc, err := loadContract(name, signWith)
		if err != nil {
			return err
		}
		sess := invoke.NewSession(bc.iface, bc.contract)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		spin := ui.NewSpinner(fmt.Sprintf("Calling %s.%s on %s...", name, fnName, bc.entry.Network))
		spin.Start()
		inv, fn, err := invokeOnce(ctx, sess, fnName, raw, callValue)
		spin.Stop()
		if err != nil {
			return err
		}

		printInvocation(inv, fn)
		if inv.Phase != invoke.Completed {
			return fmt.Errorf("%s %s", fn.Name, inv.Phase)
		}
		return nil
	},
}

// invokeOnce fills fn's fields from raw (and value for payable functions)
// and dispatches it.
func invokeOnce(ctx context.Context, sess *invoke.Session, fnName string, raw []string, value string) (*invoke.Invocation, contract.Function, error) {
	fn, ok := sess.Interface().Function(fnName)
	if !ok {
		return nil, fn, fmt.Errorf("%w: %s (see: chainsim contract functions)", invoke.ErrFunctionNotFound, fnName)
	}
	if len(raw) != len(fn.Inputs) {
		return nil, fn, fmt.Errorf("%s(%s) takes %d argument(s), got %d", fn.Name, formatParams(fn.Inputs), len(fn.Inputs), len(raw))
	}
	if value != "" && fn.Mutability != contract.Payable {
		return nil, fn, fmt.Errorf("%s is not payable; drop --value", fn.Name)
	}

	for i, r := range raw {
		// Field errors are reported by the invocation itself.
		_ = sess.Edit(fn.Name, i, r)
	}
	if fn.Mutability == contract.Payable {
		_ = sess.Edit(fn.Name, invoke.ValueIndex, value)
	}

	inv, err := sess.Invoke(ctx, fn.Name)
	return inv, fn, err
}

func init() {
	callCmd.Flags().StringVar(&callValue, "value", "", "ETH to send with a payable function, e.g. 0.5")
}
