package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/chainsim/internal/chain"
	"github.com/Mohsinsiddi/chainsim/internal/config"
	"github.com/Mohsinsiddi/chainsim/internal/ui"
)

var networkPingAll bool

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks (name → RPC URL)",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "RPC", Width: 48},
			{Title: "Default", Width: 8},
		})
		for _, name := range cfg.NetworkNames() {
			def := ""
			if name == cfg.DefaultNetwork {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{ui.Network(name), cfg.Networks[name], def})
		}
		fmt.Println(t.Render())
		return nil
	},
}

var networkAddCmd = &cobra.Command{
	Use:   "add <name> <rpc-url>",
	Short: "Add or replace a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		_, replaced := cfg.Networks[name]
		cfg.SetNetwork(name, url)
		if err := cfg.Save(); err != nil {
			return err
		}
		verb := "added"
		if replaced {
			verb = "updated"
		}
		fmt.Println(ui.Success(fmt.Sprintf("Network %s %s: %s", ui.Network(name), verb, url)))
		fmt.Println(ui.Hint("Check it with: chainsim network ping " + name))
		return nil
	},
}

var networkRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveNetwork(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Network %q removed.", args[0])))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if _, err := cfg.RPC(name); err != nil {
			return fmt.Errorf("%w\n  Add it first: chainsim network add %s <rpc-url>", err, name)
		}
		cfg.DefaultNetwork = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %s", ui.Network(name))))
		return nil
	},
}

var networkPingCmd = &cobra.Command{
	Use:   "ping [name]",
	Short: "Check that a network's node answers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if networkPingAll {
			return pingAll()
		}
		name := currentNetwork()
		if len(args) > 0 {
			name = args[0]
		}
		url, err := cfg.RPC(name)
		if err != nil {
			return err
		}
		client := chain.NewEVMClient(url)

		ctx, cancel := context.WithTimeout(context.Background(), config.RPCTimeout)
		defer cancel()
		latency, block, err := client.Ping(ctx)
		if err != nil {
			return fmt.Errorf("%s (%s) is not reachable: %w", name, url, err)
		}
		pairs := [][2]string{
			{"RPC", url},
			{"Block", fmt.Sprintf("%d", block)},
			{"Latency", latency.Round(time.Millisecond).String()},
		}
		if id, err := client.ChainID(ctx); err == nil {
			pairs = append(pairs, [2]string{"Chain ID", id.String()})
		}
		if price, err := client.GasPrice(ctx); err == nil {
			pairs = append(pairs, [2]string{"Gas price", fmt.Sprintf("%.2f gwei", chain.WeiToGwei(price))})
		}
		if accounts, err := client.Accounts(ctx); err == nil && len(accounts) > 0 {
			pairs = append(pairs, [2]string{"Accounts", fmt.Sprintf("%d unlocked (first %s)", len(accounts), ui.TruncateAddr(accounts[0]))})
		}
		fmt.Println(ui.Success(ui.Network(name) + " is up"))
		fmt.Println(ui.KeyValueBlock("", pairs))
		return nil
	},
}

func pingAll() error {
	spin := ui.NewSpinner(fmt.Sprintf("Pinging %d network(s)...", len(cfg.Networks)))
	spin.Start()
	results := chain.PingAll(context.Background(), cfg.Networks, config.RPCTimeout)
	spin.Stop()

	t := ui.NewTable([]ui.Column{
		{Title: "Network", Width: 16},
		{Title: "Status", Width: 8},
		{Title: "Block", Width: 10, Right: true},
		{Title: "Latency", Width: 10, Right: true},
		{Title: "RPC", Width: 40},
	})
	down := 0
	for _, h := range results {
		status, block, latency := ui.StyleSuccess.Render("up"), fmt.Sprintf("%d", h.BlockNumber), h.Latency.Round(time.Millisecond).String()
		if !h.Healthy() {
			down++
			status, block, latency = ui.StyleError.Render("down"), "—", "—"
		}
		t.AddRow(ui.Row{ui.Network(h.Network), status, block, latency, ui.Meta(h.URL)})
	}
	fmt.Println(t.Render())
	if down > 0 {
		fmt.Println(ui.Meta(fmt.Sprintf("%d of %d network(s) unreachable", down, len(results))))
	}
	return nil
}

func init() {
	networkPingCmd.Flags().BoolVarP(&networkPingAll, "all", "a", false, "ping every configured network")
	networkCmd.AddCommand(networkListCmd, networkAddCmd, networkRemoveCmd, networkUseCmd, networkPingCmd)
}
