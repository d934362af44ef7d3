package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/chainsim/internal/config"
	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/Mohsinsiddi/chainsim/internal/ui"
)

var contractABIFile string

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Manage registered contracts",
}

// ── contract add ──────────────────────────────────────────────────────────────

var contractAddCmd = &cobra.Command{
	Use:   "add <name> <address> --abi <file>",
	Short: "Register an already deployed contract",
	Long: `Register a contract in the local registry so you can call it by name.

The --abi file can be a raw ABI array or a Hardhat/Foundry artifact:
  • Raw ABI array:       [{"type":"function",...}, ...]
  • Hardhat artifact:    {"abi":[...],"bytecode":"0x...","contractName":"..."}
  • Foundry artifact:    {"abi":[...],"bytecode":{"object":"0x..."},...}

Examples:
  chainsim contract add adder 0x5FbDB2315678afecb367f032d93F642f64180aa3 --abi Adder.json
  chainsim contract add vault 0x1234... --abi ./out/Vault.sol/Vault.json --network sepolia`,
	Aliases: []string{"import"},
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, address := args[0], args[1]
		if contractABIFile == "" {
			return fmt.Errorf("--abi <path> is required")
		}
		if !contract.IsAddress(address) {
			return fmt.Errorf("%q is not a valid address", address)
		}
		address = contract.HexAddress(address)

		abi, err := contract.ReadABI(contractABIFile)
		if err != nil {
			return err
		}

		reg, err := newContractRegistry()
		if err != nil {
			return err
		}
		network := currentNetwork()
		if old, err := reg.Get(name, network); err == nil {
			if !ui.Confirm(fmt.Sprintf("%q on %s already points at %s. Replace it?", name, network, old.Address)) {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
		}
		reg.Add(&contract.Entry{
			Name:    name,
			Network: network,
			Address: address,
			ABI:     abi,
			Kind:    contract.KindImported,
			Source:  contractABIFile,
		})
		if err := reg.Save(); err != nil {
			return err
		}

		warnIfNoCode(address)
		fmt.Println(ui.Success(fmt.Sprintf(
			"Registered %q on %s at %s (%d functions from %s)",
			name, ui.Network(network), ui.Addr(address), contract.CountFunctions(abi), contractABIFile)))
		fmt.Println(ui.Hint("Explore it with: chainsim studio " + name))
		return nil
	},
}

// ── contract list ─────────────────────────────────────────────────────────────

var contractListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered contracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newContractRegistry()
		if err != nil {
			return err
		}

		entries := reg.All()
		if len(entries) == 0 {
			fmt.Println(ui.Info("No contracts registered yet."))
			fmt.Println(ui.Hint("Deploy one with: chainsim deploy <file.sol>"))
			fmt.Println(ui.Hint("Or register one: chainsim contract add <name> <address> --abi <file.json>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Network", Width: 12},
			{Title: "Address", Width: 44},
			{Title: "Kind", Width: 10},
			{Title: "Funcs", Width: 6, Right: true},
		})
		for _, e := range entries {
			t.AddRow(ui.Row{
				ui.Val(e.Name),
				ui.Network(e.Network),
				ui.Addr(e.Address),
				e.Kind,
				fmt.Sprintf("%d", contract.CountFunctions(e.ABI)),
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d contract(s) registered", len(entries))))
		return nil
	},
}

// ── contract remove ───────────────────────────────────────────────────────────

var contractRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a contract from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, network := args[0], currentNetwork()
		reg, err := newContractRegistry()
		if err != nil {
			return err
		}
		if _, err := reg.Get(name, network); err != nil {
			return err
		}
		if !ui.ConfirmDanger(fmt.Sprintf("Remove contract %q on %s?", name, network)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := reg.Remove(name, network); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Contract %q removed.", name)))
		return nil
	},
}

// ── contract functions ────────────────────────────────────────────────────────

var contractFunctionsCmd = &cobra.Command{
	Use:     "functions <contract>",
	Aliases: []string{"fns"},
	Short:   "List a contract's functions with selectors and input hints",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newContractRegistry()
		if err != nil {
			return err
		}
		entry, err := reg.Get(args[0], currentNetwork())
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", ui.StyleTitle.Render(fmt.Sprintf("%s on %s", entry.Name, entry.Network)))
		fmt.Printf("  %s %s\n", ui.Meta("Address:"), ui.Addr(entry.Address))
		if entry.Deployer != "" {
			fmt.Printf("  %s %s\n", ui.Meta("Deployer:"), ui.Addr(entry.Deployer))
		}
		if entry.DeployedAt != "" {
			fmt.Printf("  %s %s\n", ui.Meta("Deployed:"), ui.Meta(entry.DeployedAt))
		}
		fmt.Println()
		printFunctions(entry.Interface())
		fmt.Println()
		fmt.Println(ui.Hint("Call one with: chainsim call " + entry.Name + " <function> [args...]"))
		return nil
	},
}

// warnIfNoCode warns when the current network has no code at address.
// An unreachable node is not an error here; the contract may be added
// before the node is started.
func warnIfNoCode(address string) {
	client, err := newClient()
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), config.RPCTimeout)
	defer cancel()
	code, err := client.Code(ctx, address)
	if err == nil && len(code) == 0 {
		fmt.Println(ui.Warn(fmt.Sprintf("no contract code at %s on %s", address, currentNetwork())))
	}
}

// printFunctions lists read then write functions with their selectors.
func printFunctions(iface *contract.Interface) {
	var reads, writes []contract.Function
	for _, fn := range iface.Functions {
		if fn.IsRead() {
			reads = append(reads, fn)
		} else {
			writes = append(writes, fn)
		}
	}

	fmt.Println(ui.StyleHeader.Render("Read Functions:"))
	if len(reads) == 0 {
		fmt.Println(ui.Meta("  (none)"))
	}
	for _, fn := range reads {
		fmt.Printf("  %s  %s(%s)  →  %s\n",
			ui.Meta(fn.Entry.Selector()),
			ui.Val(fn.Name),
			ui.Meta(formatParams(fn.Inputs)),
			ui.Meta(formatParams(fn.Outputs)),
		)
	}

	fmt.Println()
	fmt.Println(ui.StyleHeader.Render("Write Functions:"))
	if len(writes) == 0 {
		fmt.Println(ui.Meta("  (none)"))
	}
	for _, fn := range writes {
		badge := ""
		if fn.Mutability == contract.Payable {
			badge = " " + ui.StyleAccent.Render("payable")
		}
		fmt.Printf("  %s  %s(%s)%s\n",
			ui.Meta(fn.Entry.Selector()),
			ui.Warn(fn.Name),
			ui.Meta(formatParams(fn.Inputs)),
			badge,
		)
	}
}

// formatParams returns a comma-separated string of "type name" pairs.
func formatParams(params []contract.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Type.String()
		if p.Name != "" {
			parts[i] += " " + p.Name
		}
	}
	return strings.Join(parts, ", ")
}

func init() {
	contractAddCmd.Flags().StringVar(&contractABIFile, "abi", "", "path to ABI JSON file or Hardhat/Foundry artifact (required)")

	contractCmd.AddCommand(
		contractAddCmd,
		contractListCmd,
		contractRemoveCmd,
		contractFunctionsCmd,
	)
}
