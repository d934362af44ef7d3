package cmd

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/chainsim/internal/chain"
	"github.com/Mohsinsiddi/chainsim/internal/config"
	"github.com/Mohsinsiddi/chainsim/internal/ui"
	"github.com/Mohsinsiddi/chainsim/internal/wallet"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage signing wallets for keystore mode",
	Long: `Manage the wallets chainsim signs with when provider is "keystore".

Private keys live in the OS keychain (or an encrypted file where no keychain
is available); wallets.json only holds names and addresses. Set
` + wallet.EnvPrivateKey + ` to sign with a key from the environment instead.

In "node" mode (the default) the node's first unlocked account is used and
no wallet is needed.`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> --key <private-key>",
	Short: "Add a signing wallet from a private key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if walletKeyFlag == "" {
			return fmt.Errorf("--key is required\n  Or create a fresh key with: chainsim wallet generate %s", args[0])
		}
		w, err := newWalletManager().AddWithKey(args[0], walletKeyFlag)
		if err != nil {
			return err
		}
		printWalletAdded(w)
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new key and add it as a wallet",
	Long: `Generate a brand-new keypair and store the private key in the OS keychain.

The private key is displayed ONCE. Fund the address from a node account
(anvil and hardhat print funded keys on start) before deploying with it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := crypto.GenerateKey()
		if err != nil {
			return err
		}
		hexKey := hex.EncodeToString(crypto.FromECDSA(key))
		w, err := newWalletManager().AddWithKey(args[0], hexKey)
		if err != nil {
			return err
		}
		printWalletAdded(w)
		fmt.Println()
		fmt.Println(ui.StyleBorder.Render(
			ui.Warn("SAVE YOUR PRIVATE KEY — shown only once. Never share it.") + "\n\n" +
				ui.Val("0x"+hexKey),
		))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets, err := newWalletManager().List()
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: chainsim wallet add <name> --key <private-key>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Default", Width: 8},
			{Title: "Added", Width: 22},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{ui.Val(w.Name), ui.Addr(w.Address), def, ui.Meta(w.CreatedAt)})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured · provider: %s", len(wallets), cfg.Provider)))
		if cfg.Provider != config.ProviderKeystore {
			fmt.Println(ui.Hint("Sign with these wallets: chainsim config set provider keystore"))
		}
		return nil
	},
}

var walletBalanceCmd = &cobra.Command{
	Use:   "balance [name]",
	Short: "Show a wallet's balance on the current network",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		w, err := newWalletManager().Resolve(firstNonEmpty(name, cfg.DefaultWallet))
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.RPCTimeout)
		defer cancel()
		wei, err := client.Balance(ctx, w.Address)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s  %s ETH\n", ui.Val(w.Name), ui.Addr(w.Address), ui.Val(chain.WeiToETH(wei)))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		if _, err := mgr.Get(name); err != nil {
			return err
		}
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q and delete its key?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:     "use <name>",
	Aliases: []string{"default"},
	Short:   "Set the default wallet",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := newWalletManager().SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

func printWalletAdded(w *wallet.Wallet) {
	fmt.Println(ui.Success(fmt.Sprintf("Wallet %q added: %s", w.Name, ui.Addr(w.Address))))
	if w.IsDefault {
		fmt.Println(ui.Meta("  first wallet, set as default"))
	} else {
		fmt.Println(ui.Hint("Set as default with: chainsim wallet use " + w.Name))
	}
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key (with or without 0x)")
	walletCmd.AddCommand(
		walletAddCmd,
		walletGenerateCmd,
		walletListCmd,
		walletBalanceCmd,
		walletRemoveCmd,
		walletUseCmd,
	)
}
