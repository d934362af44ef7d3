package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/chainsim/internal/compiler"
	"github.com/Mohsinsiddi/chainsim/internal/config"
	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/Mohsinsiddi/chainsim/internal/ui"
)

var (
	solcPath       string
	contractName   string
	artifactOut    string
	compileSrvAddr string
)

var compileCmd = &cobra.Command{
	Use:   "compile <file.sol>",
	Short: "Compile a Solidity file and list its functions",
	Long: `Compile a Solidity source file with the compile service or a local solc.

The compile service is used unless --solc (or solc_path in config) names a
solc binary. Only errors fail the build; warnings are printed.

Examples:
  chainsim compile Adder.sol
  chainsim compile Token.sol --contract Token --out token.json
  chainsim compile Adder.sol --solc /usr/local/bin/solc`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}
		res, err := compileSource(cmd.Context(), source)
		if err != nil {
			return err
		}
		art := res.Artifact

		fmt.Println(ui.Success(fmt.Sprintf("Compiled %s (%d bytes of bytecode)", ui.Val(art.Name), len(art.Bytecode))))
		if names := res.Output.Names(); len(names) > 1 {
			fmt.Println(ui.Meta("  other contracts: " + strings.Join(others(names, art.Name), ", ")))
		}
		printFunctions(contract.NewInterface(art.ABI))

		if artifactOut != "" {
			if err := writeArtifact(artifactOut, art); err != nil {
				return err
			}
			fmt.Println(ui.Success("Artifact written to " + artifactOut))
			fmt.Println(ui.Hint("Deploy it with: chainsim deploy " + artifactOut))
		}
		return nil
	},
}

var compileServerCmd = &cobra.Command{
	Use:   "compile-server",
	Short: "Serve the compile API backed by a local solc",
	Long: `Run the HTTP compile service other chainsim instances use.

  POST /compile   {"code": "<solidity source>"} → solc standard-JSON output
  GET  /healthz
  GET  /metrics   Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		path := firstNonEmpty(solcPath, cfg.SolcPath, "solc")
		srv := compiler.NewServer(compiler.NewSolc(path))
		fmt.Println(ui.Info(fmt.Sprintf("Compile server listening on %s (solc: %s)", ui.Val(compileSrvAddr), path)))
		return srv.ListenAndServe(ctx, compileSrvAddr)
	},
}

func compileSource(ctx context.Context, source string) (*compiler.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, config.CompileTimeout)
	defer cancel()

	spin := ui.NewSpinner("Compiling...")
	spin.Start()
	res, err := compiler.Build(ctx, newCompiler(solcPath), source, contractName)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		fmt.Println(ui.Warn(w.String()))
	}
	return res, nil
}

// writeArtifact saves a Hardhat-style artifact that `deploy` and
// `contract import` read back.
func writeArtifact(path string, art *contract.Artifact) error {
	data, err := json.MarshalIndent(struct {
		ContractName string              `json:"contractName"`
		ABI          []contract.ABIEntry `json:"abi"`
		Bytecode     string              `json:"bytecode"`
	}{art.Name, art.ABI, fmt.Sprintf("0x%x", art.Bytecode)}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func others(names []string, skip string) []string {
	var out []string
	for _, n := range names {
		if !strings.HasSuffix(n, ":"+skip) {
			out = append(out, n)
		}
	}
	return out
}

func init() {
	for _, c := range []*cobra.Command{compileCmd, deployCmd, playgroundCmd} {
		c.Flags().StringVar(&solcPath, "solc", "", "compile with this solc binary instead of the compile service")
		c.Flags().StringVar(&contractName, "contract", "", "contract to select when the source defines several")
	}
	compileCmd.Flags().StringVarP(&artifactOut, "out", "o", "", "write an artifact JSON file")

	compileServerCmd.Flags().StringVar(&solcPath, "solc", "", "solc binary (default: solc on PATH)")
	compileServerCmd.Flags().StringVar(&compileSrvAddr, "addr", ":4000", "listen address")
}
