package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/chainsim/internal/binding"
	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/Mohsinsiddi/chainsim/internal/ui"
)

var (
	deployName string
	signWith   string // keystore wallet used by deploy, call, studio and playground
)

var deployCmd = &cobra.Command{
	Use:   "deploy <file.sol|artifact.json> [constructor args...]",
	Short: "Deploy a contract and register it",
	Long: `Compile (for .sol files) and deploy a contract, then register it so
call, studio and contract functions can find it by name.

Constructor arguments are typed as plain text, one per argument:
numbers in decimal, arrays comma-separated, tuples as JSON arrays.

Examples:
  chainsim deploy Adder.sol
  chainsim deploy Token.sol "My Token" MTK 1000000 --name token
  chainsim deploy ./out/Vault.json 0x5B38Da6a701c568545dCfcB03FcB875f56beddC4`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, rawArgs := args[0], args[1:]

		var art *contract.Artifact
		if strings.EqualFold(filepath.Ext(path), ".sol") {
			source, err := readSource(path)
			if err != nil {
				return err
			}
			res, err := compileSource(cmd.Context(), source)
			if err != nil {
				return err
			}
			art = res.Artifact
		} else {
			var err error
			art, err = contract.ReadArtifact(path)
			if err != nil {
				return err
			}
			if art.Name == "" {
				art.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
		}

		entry, err := deployArtifact(cmd.Context(), art, rawArgs, firstNonEmpty(deployName, art.Name), path)
		if err != nil {
			return err
		}
		fmt.Println(ui.Hint("Open it with: chainsim studio " + entry.Name))
		return nil
	},
}

// deployArtifact deploys art, registers it under name and prints a summary.
func deployArtifact(ctx context.Context, art *contract.Artifact, rawArgs []string, name, source string) (*contract.Entry, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !art.Deployable() {
		return nil, fmt.Errorf("%s has no bytecode (interface or abstract contract?)", art.Name)
	}
	args, err := binding.ConstructorArgs(art.ABI, rawArgs)
	if err != nil {
		return nil, err
	}

	client, err := newClient()
	if err != nil {
		return nil, err
	}
	provider, err := newProvider(client, signWith)
	if err != nil {
		return nil, err
	}
	reg, err := newContractRegistry()
	if err != nil {
		return nil, err
	}

	network := currentNetwork()
	spin := ui.NewSpinner(fmt.Sprintf("Deploying %s to %s...", art.Name, network))
	spin.Start()
	dep, err := binding.Deploy(ctx, client, provider, art, args)
	if err != nil {
		spin.Stop()
		return nil, err
	}

	entry := &contract.Entry{
		Name:       name,
		Network:    network,
		Address:    dep.Address,
		ABI:        art.ABI,
		Kind:       contract.KindDeployed,
		Source:     source,
		Deployer:   dep.Deployer,
		TxHash:     dep.TxHash,
		DeployedAt: time.Now().UTC().Format(time.RFC3339),
	}
	reg.Add(entry)
	if err := reg.Save(); err != nil {
		spin.Stop()
		return nil, err
	}

	spin.StopWithMsg(ui.Success(fmt.Sprintf("Deployed %s on %s", ui.Val(name), ui.Network(network))))
	fmt.Println(ui.KeyValueBlock("", [][2]string{
		{"Address", dep.Address},
		{"Tx", dep.TxHash},
		{"Deployer", dep.Deployer},
		{"Gas used", fmt.Sprintf("%d", dep.GasUsed)},
	}))
	return entry, nil
}

func init() {
	deployCmd.Flags().StringVar(&deployName, "name", "", "registry name (default: contract name)")
	for _, c := range []*cobra.Command{deployCmd, callCmd, studioCmd, playgroundCmd} {
		c.Flags().StringVar(&signWith, "wallet", "", "keystore wallet to sign with (default: config)")
	}
}
