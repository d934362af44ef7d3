package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Mohsinsiddi/chainsim/internal/binding"
	"github.com/Mohsinsiddi/chainsim/internal/chain"
	"github.com/Mohsinsiddi/chainsim/internal/compiler"
	"github.com/Mohsinsiddi/chainsim/internal/config"
	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/Mohsinsiddi/chainsim/internal/invoke"
	"github.com/Mohsinsiddi/chainsim/internal/ui"
	"github.com/Mohsinsiddi/chainsim/internal/wallet"
)

// currentNetwork is --network or the configured default.
func currentNetwork() string {
	if networkFlag != "" {
		return networkFlag
	}
	return cfg.DefaultNetwork
}

func newClient() (*chain.EVMClient, error) {
	url, err := cfg.RPC(currentNetwork())
	if err != nil {
		return nil, err
	}
	return chain.NewEVMClient(url), nil
}

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeyStore(wallet.OpenKeystore(cfg.Dir())),
	)
}

// newProvider builds the transaction provider for the configured mode.
// walletName selects a keystore wallet; empty means the default one.
func newProvider(client *chain.EVMClient, walletName string) (wallet.Provider, error) {
	switch cfg.Provider {
	case config.ProviderKeystore:
		mgr := newWalletManager()
		w, err := mgr.Resolve(firstNonEmpty(walletName, cfg.DefaultWallet))
		if err != nil {
			return nil, err
		}
		return wallet.NewKeyProvider(client, w, mgr.Keys()), nil
	default:
		return wallet.NewNodeProvider(client), nil
	}
}

func newContractRegistry() (*contract.Registry, error) {
	reg := contract.NewRegistry(cfg.ContractsPath())
	if err := reg.Load(); err != nil {
		return nil, err
	}
	return reg, nil
}

// newCompiler prefers a local solc (flag, then config) over the HTTP
// compile service.
func newCompiler(solcPath string) compiler.Compiler {
	if p := firstNonEmpty(solcPath, cfg.SolcPath); p != "" {
		return compiler.NewSolc(p)
	}
	return compiler.NewHTTPClient(cfg.CompilerURL)
}

// boundContract is a registry entry bound to a live client and provider.
type boundContract struct {
	entry    *contract.Entry
	iface    *contract.Interface
	contract *binding.Contract
}

func bindEntry(entry *contract.Entry, walletName string) (*boundContract, error) {
	url, err := cfg.RPC(entry.Network)
	if err != nil {
		return nil, err
	}
	client := chain.NewEVMClient(url)
	provider, err := newProvider(client, walletName)
	if err != nil && !errors.Is(err, wallet.ErrWalletUnavailable) {
		return nil, err
	}
	// Reads still work without a signer; writes report ErrWalletUnavailable.
	c, err := binding.New(entry.Address, entry.ABI, client, provider)
	if err != nil {
		return nil, err
	}
	return &boundContract{entry: entry, iface: entry.Interface(), contract: c}, nil
}

func loadContract(name, walletName string) (*boundContract, error) {
	reg, err := newContractRegistry()
	if err != nil {
		return nil, err
	}
	entry, err := reg.Get(name, currentNetwork())
	if err != nil {
		return nil, fmt.Errorf("%w\n  Deploy one with: chainsim deploy <file.sol>\n  Or register one: chainsim contract add %s <address> --abi <file.json>", err, name)
	}
	return bindEntry(entry, walletName)
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", fmt.Errorf("%s is empty", path)
	}
	return string(data), nil
}

// printInvocation prints the terminal state of a one-shot invocation.
func printInvocation(inv *invoke.Invocation, fn contract.Function) {
	switch inv.Phase {
	case invoke.Aborted:
		fmt.Println(ui.Err("invalid arguments"))
		for i, p := range fn.Inputs {
			if msg, ok := inv.Errors[i]; ok {
				fmt.Printf("  %s  %s\n", ui.Val(paramName(p, i)), ui.StyleError.Render(msg))
			}
		}
		if msg, ok := inv.Errors[invoke.ValueIndex]; ok {
			fmt.Printf("  %s  %s\n", ui.Val("--value"), ui.StyleError.Render(msg))
		}
	case invoke.Failed:
		fmt.Println(ui.Err(inv.Outcome.Message()))
	case invoke.Completed:
		if inv.Outcome.Kind == invoke.WriteReceipt {
			fmt.Println(ui.Success(fmt.Sprintf("%s confirmed", fn.Name)))
			fmt.Printf("  %s %s\n", ui.Meta("Tx:      "), ui.Addr(inv.Outcome.TxHash))
			fmt.Printf("  %s %s\n", ui.Meta("Gas used:"), ui.Val(fmt.Sprintf("%d", inv.Outcome.GasUsed)))
			return
		}
		fmt.Printf("%s  %s\n", ui.StyleTitle.Render(fn.Name+"()"), ui.Meta("→ result"))
		fmt.Println(ui.Val(inv.Outcome.Message()))
	}
}

func paramName(p contract.Param, i int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("arg%d", i)
}

// errorLine renders a command error with a hint where one helps.
func errorLine(err error) string {
	if errors.Is(err, wallet.ErrWalletUnavailable) {
		return ui.Err(err.Error()) + "\n" + ui.Hint("Add a signing wallet with: chainsim wallet add <name> --key <hex>")
	}
	return ui.Err(err.Error())
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
