package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/chainsim/internal/config"
	"github.com/Mohsinsiddi/chainsim/internal/logger"
	"github.com/Mohsinsiddi/chainsim/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set one configuration value and save it.

Keys:
  ` + strings.Join(configKeys(), "\n  ") + `

Networks are managed with: chainsim network add|remove|use`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setConfigValue(cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", args[0], args[1])))
		return nil
	},
}

var configSetters = map[string]func(c *config.Config, v string) error{
	"default_network": func(c *config.Config, v string) error {
		if _, err := c.RPC(v); err != nil {
			return err
		}
		c.DefaultNetwork = v
		return nil
	},
	"default_wallet": func(c *config.Config, v string) error { c.DefaultWallet = v; return nil },
	"provider": func(c *config.Config, v string) error {
		if v != config.ProviderNode && v != config.ProviderKeystore {
			return fmt.Errorf("provider must be %q or %q", config.ProviderNode, config.ProviderKeystore)
		}
		c.Provider = v
		return nil
	},
	"compiler_url": func(c *config.Config, v string) error { c.CompilerURL = strings.TrimRight(v, "/"); return nil },
	"solc_path":    func(c *config.Config, v string) error { c.SolcPath = v; return nil },
	"log_level": func(c *config.Config, v string) error {
		if _, err := logger.ParseLevel(v); err != nil {
			return err
		}
		c.LogLevel = v
		return nil
	},
	"metrics_addr":       func(c *config.Config, v string) error { c.MetricsAddr = v; return nil },
	"telemetry_endpoint": func(c *config.Config, v string) error { c.TelemetryEndpoint = v; return nil },
}

func setConfigValue(c *config.Config, key, value string) error {
	set, ok := configSetters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(configKeys(), ", "))
	}
	return set(c, strings.TrimSpace(value))
}

func configKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for k := range configSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
