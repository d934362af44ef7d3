package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/chainsim/internal/config"
	"github.com/Mohsinsiddi/chainsim/internal/logger"
	"github.com/Mohsinsiddi/chainsim/internal/metrics"
	"github.com/Mohsinsiddi/chainsim/internal/telemetry"
	"github.com/Mohsinsiddi/chainsim/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/chainsim/cmd.Version=1.2.3" .
var Version = "0.1.0"

// EnvLogLevel sets the log level when --log-level is not given.
const EnvLogLevel = "CHAINSIM_LOG_LEVEL"

var (
	cfgDir            string
	cfg               *config.Config
	networkFlag       string
	logLevel          string
	logJSON           bool
	metricsAddr       string
	telemetryEndpoint string

	shutdownTracing = func() {}
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "chainsim",
	Short: "Compile, deploy and poke at smart contracts from the terminal",
	Long: `chainsim — a terminal playground for EVM smart contracts.

  Compile Solidity, deploy it to a node, and call any function by typing its
  arguments as plain text. Every write is timed and its gas recorded in a
  leaderboard.

Start with a bundled lesson against a local node (anvil, hardhat node):
  chainsim playground --lesson 1`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if networkFlag != "" {
			if _, err := cfg.RPC(networkFlag); err != nil {
				return err
			}
		}
		return setupObservability(cmd.Context())
	},
}

func setupObservability(ctx context.Context) error {
	level := firstNonEmpty(logLevel, os.Getenv(EnvLogLevel), cfg.LogLevel)
	log, err := logger.New(logger.Options{Level: level, JSON: logJSON})
	if err != nil {
		return err
	}
	logger.Set(log)

	endpoint := firstNonEmpty(telemetryEndpoint, cfg.TelemetryEndpoint)
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Endpoint: endpoint,
		Version:  Version,
		Insecure: true,
	})
	if err != nil {
		return err
	}
	shutdownTracing = shutdown

	if addr := firstNonEmpty(metricsAddr, cfg.MetricsAddr); addr != "" {
		go func() {
			if err := metrics.Serve(addr); err != nil {
				log.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
			}
		}()
		log.Info("serving metrics", zap.String("addr", addr))
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	shutdownTracing()
	logger.L().Sync() //nolint:errcheck
	if err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(ui.Banner(Version) + "chainsim {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $"+config.EnvDir+" or ~/.chainsim)")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "network to use (default: config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: warn)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	rootCmd.PersistentFlags().StringVar(&telemetryEndpoint, "telemetry-endpoint", "", "OTLP/HTTP collector host:port for traces")

	// Register all sub-commands.
	rootCmd.AddCommand(
		compileCmd,
		compileServerCmd,
		deployCmd,
		contractCmd,
		callCmd,
		studioCmd,
		playgroundCmd,
		lessonCmd,
		walletCmd,
		networkCmd,
		configCmd,
	)
}
